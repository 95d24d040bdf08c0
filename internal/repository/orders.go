package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/burhani/shop-system/internal/model"
)

// CreateOrder сохраняет заказ, его позиции и начальную запись платежа
// в одной транзакции. Идентификаторы и отметки времени проставляются в переданные структуры.
func (r *PostgresRepository) CreateOrder(ctx context.Context, order *model.Order, payment *model.Payment) error {
	return r.withRetry(ctx, func() error {
		tx, err := r.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		defer tx.Rollback(ctx)

		err = tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, customer_name, customer_email, customer_phone,
			                     shipping_address, shipping_city, shipping_state, shipping_pincode,
			                     subtotal, shipping_cost, total_amount, status, payment_method, customer_notes)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			 RETURNING id, created_at`,
			order.UserID, order.CustomerName, order.CustomerEmail, order.CustomerPhone,
			order.ShippingAddress, order.ShippingCity, order.ShippingState, order.ShippingPincode,
			order.Subtotal, order.ShippingCost, order.TotalAmount, string(order.Status),
			string(order.PaymentMethod), order.CustomerNotes,
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID

			err = tx.QueryRow(ctx,
				`INSERT INTO order_items (order_id, product_id, color_variant_id, product_name,
				                          product_sku, selected_size, selected_color,
				                          unit_price, quantity, total_price)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				 RETURNING id`,
				item.OrderID, item.ProductID, item.ColorVariantID, item.ProductName,
				item.ProductSKU, item.SelectedSize, item.SelectedColor,
				item.UnitPrice, item.Quantity, item.TotalPrice,
			).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}

		payment.OrderID = order.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO payments (order_id, method, status, amount, currency)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id, created_at`,
			payment.OrderID, string(payment.Method), string(payment.Status), payment.Amount, payment.Currency,
		).Scan(&payment.ID, &payment.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit tx: %w", err)
		}

		return nil
	})
}

// GetOrderByID возвращает заказ с позициями в порядке их добавления в корзину.
func (r *PostgresRepository) GetOrderByID(ctx context.Context, id int64) (*model.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, customer_name, customer_email, customer_phone,
		        shipping_address, shipping_city, shipping_state, shipping_pincode,
		        subtotal, shipping_cost, total_amount, status, payment_method, customer_notes,
		        created_at, confirmed_at, shipped_at, delivered_at
		 FROM orders
		 WHERE id = $1`,
		id,
	)

	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
		&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingPincode,
		&o.Subtotal, &o.ShippingCost, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CustomerNotes,
		&o.CreatedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.getOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// GetOrdersByUser возвращает заказы пользователя, новые первыми.
func (r *PostgresRepository) GetOrdersByUser(ctx context.Context, userID int64, limit int) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, customer_name, customer_email, customer_phone,
		        shipping_address, shipping_city, shipping_state, shipping_pincode,
		        subtotal, shipping_cost, total_amount, status, payment_method, customer_notes,
		        created_at, confirmed_at, shipped_at, delivered_at
		 FROM orders
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var res []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone,
			&o.ShippingAddress, &o.ShippingCity, &o.ShippingState, &o.ShippingPincode,
			&o.Subtotal, &o.ShippingCost, &o.TotalAmount, &o.Status, &o.PaymentMethod, &o.CustomerNotes,
			&o.CreatedAt, &o.ConfirmedAt, &o.ShippedAt, &o.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		res = append(res, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range res {
		items, err := r.getOrderItems(ctx, res[i].ID)
		if err != nil {
			return nil, err
		}
		res[i].Items = items
	}

	return res, nil
}

func (r *PostgresRepository) getOrderItems(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, color_variant_id, product_name, product_sku,
		        selected_size, selected_color, unit_price, quantity, total_price
		 FROM order_items
		 WHERE order_id = $1
		 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	var res []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(
			&it.ID, &it.OrderID, &it.ProductID, &it.ColorVariantID, &it.ProductName, &it.ProductSKU,
			&it.SelectedSize, &it.SelectedColor, &it.UnitPrice, &it.Quantity, &it.TotalPrice,
		); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		res = append(res, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateOrderStatus переводит заказ из статуса from в статус to. Проверка
// текущего статуса и запись выполняются одним условным UPDATE, поэтому
// параллельные переводы сериализуются на строке. Отметка времени проставляется
// при первом переходе в confirmed, shipped или delivered.
func (r *PostgresRepository) UpdateOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3,
		        confirmed_at = CASE WHEN $3 = 'confirmed' AND confirmed_at IS NULL THEN now() ELSE confirmed_at END,
		        shipped_at   = CASE WHEN $3 = 'shipped'   AND shipped_at   IS NULL THEN now() ELSE shipped_at END,
		        delivered_at = CASE WHEN $3 = 'delivered' AND delivered_at IS NULL THEN now() ELSE delivered_at END
		 WHERE id = $1 AND status = $2`,
		id, string(from), string(to),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		var current string
		err := r.pool.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("select order status: %w", err)
		}
		return ErrStatusConflict
	}

	return nil
}
