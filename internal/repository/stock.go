package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/burhani/shop-system/internal/model"
)

// ReserveStock атомарно списывает qty со склада единицы продажи.
// Проверка остатка и списание выполняются одним условным UPDATE,
// поэтому параллельные резервирования сериализуются на строке.
// При нехватке возвращает доступный остаток вместе с ErrInsufficientStock.
func (r *PostgresRepository) ReserveStock(ctx context.Context, ref model.UnitRef, qty int64) (int64, error) {
	var (
		cmdTag pgconn.CommandTag
		err    error
	)

	if ref.ColorVariantID == nil {
		cmdTag, err = r.pool.Exec(ctx,
			`UPDATE products SET stock = stock - $2 WHERE id = $1 AND is_active AND stock >= $2`,
			ref.ProductID, qty,
		)
	} else {
		cmdTag, err = r.pool.Exec(ctx,
			`UPDATE product_color_variants SET stock = stock - $3
			 WHERE id = $1 AND product_id = $2 AND is_active AND stock >= $3`,
			*ref.ColorVariantID, ref.ProductID, qty,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("reserve stock: %w", err)
	}

	if cmdTag.RowsAffected() == 1 {
		return 0, nil
	}

	available, err := r.availableStock(ctx, ref)
	if err != nil {
		return 0, err
	}

	return available, ErrInsufficientStock
}

// ReleaseStock возвращает qty на склад. Используется только как компенсация
// при откате неудавшегося оформления заказа.
func (r *PostgresRepository) ReleaseStock(ctx context.Context, ref model.UnitRef, qty int64) error {
	var (
		cmdTag pgconn.CommandTag
		err    error
	)

	if ref.ColorVariantID == nil {
		cmdTag, err = r.pool.Exec(ctx,
			`UPDATE products SET stock = stock + $2 WHERE id = $1`,
			ref.ProductID, qty,
		)
	} else {
		cmdTag, err = r.pool.Exec(ctx,
			`UPDATE product_color_variants SET stock = stock + $3 WHERE id = $1 AND product_id = $2`,
			*ref.ColorVariantID, ref.ProductID, qty,
		)
	}
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrUnitNotFound
	}

	return nil
}

func (r *PostgresRepository) availableStock(ctx context.Context, ref model.UnitRef) (int64, error) {
	var (
		stock  int64
		active bool
		row    pgx.Row
	)

	if ref.ColorVariantID == nil {
		row = r.pool.QueryRow(ctx,
			`SELECT stock, is_active FROM products WHERE id = $1`,
			ref.ProductID,
		)
	} else {
		row = r.pool.QueryRow(ctx,
			`SELECT v.stock, (p.is_active AND v.is_active)
			 FROM product_color_variants v
			 JOIN products p ON p.id = v.product_id
			 WHERE v.id = $1 AND v.product_id = $2`,
			*ref.ColorVariantID, ref.ProductID,
		)
	}

	if err := row.Scan(&stock, &active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUnitNotFound
		}
		return 0, fmt.Errorf("select stock: %w", err)
	}

	if !active {
		return 0, ErrUnitNotFound
	}

	return stock, nil
}
