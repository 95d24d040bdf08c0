package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/burhani/shop-system/internal/model"
)

// GetCategories возвращает активные категории каталога в порядке отображения.
func (r *PostgresRepository) GetCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, type, description, display_order, is_active, created_at
		 FROM categories
		 WHERE is_active
		 ORDER BY display_order, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var res []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Type, &c.Description, &c.DisplayOrder, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		res = append(res, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetProducts возвращает активные товары, опционально отфильтрованные по категории.
func (r *PostgresRepository) GetProducts(ctx context.Context, categoryID *int64, limit int) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, slug, description, original_price, discounted_price, stock, sku,
		        category_id, sizes, colors, is_active, is_featured, created_at, updated_at
		 FROM products
		 WHERE is_active AND ($1::bigint IS NULL OR category_id = $1)
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2`,
		categoryID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	var res []model.Product
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Description, &p.OriginalPrice, &p.DiscountedPrice,
			&p.Stock, &p.SKU, &p.CategoryID, &p.Sizes, &p.Colors, &p.IsActive, &p.IsFeatured,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		res = append(res, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// GetProductByID возвращает товар вместе с изображениями и цветовыми вариантами.
func (r *PostgresRepository) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, slug, description, original_price, discounted_price, stock, sku,
		        category_id, sizes, colors, is_active, is_featured, created_at, updated_at
		 FROM products
		 WHERE id = $1`,
		id,
	)

	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.OriginalPrice, &p.DiscountedPrice,
		&p.Stock, &p.SKU, &p.CategoryID, &p.Sizes, &p.Colors, &p.IsActive, &p.IsFeatured,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	images, err := r.pool.Query(ctx,
		`SELECT id, product_id, color_variant_id, image_url, alt_text, display_order, is_primary
		 FROM product_images
		 WHERE product_id = $1
		 ORDER BY display_order, id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("select product images: %w", err)
	}
	defer images.Close()

	for images.Next() {
		var img model.ProductImage
		if err := images.Scan(&img.ID, &img.ProductID, &img.ColorVariantID, &img.ImageURL, &img.AltText, &img.DisplayOrder, &img.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		p.Images = append(p.Images, img)
	}
	if err := images.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	variants, err := r.pool.Query(ctx,
		`SELECT id, product_id, color_name, original_price, discounted_price, stock, is_active
		 FROM product_color_variants
		 WHERE product_id = $1
		 ORDER BY id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("select color variants: %w", err)
	}
	defer variants.Close()

	for variants.Next() {
		var v model.ColorVariant
		if err := variants.Scan(&v.ID, &v.ProductID, &v.ColorName, &v.OriginalPrice, &v.DiscountedPrice, &v.Stock, &v.IsActive); err != nil {
			return nil, fmt.Errorf("scan color variant: %w", err)
		}
		p.ColorVariants = append(p.ColorVariants, v)
	}
	if err := variants.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return &p, nil
}

// ResolveUnit разрешает единицу продажи: товар либо его цветовой вариант.
// Вариант, не принадлежащий указанному товару, считается не найденным.
func (r *PostgresRepository) ResolveUnit(ctx context.Context, ref model.UnitRef) (*model.SellableUnit, error) {
	unit := model.SellableUnit{Ref: ref}

	var row pgx.Row
	if ref.ColorVariantID == nil {
		row = r.pool.QueryRow(ctx,
			`SELECT name, sku, original_price, discounted_price, stock, is_active
			 FROM products
			 WHERE id = $1`,
			ref.ProductID,
		)
	} else {
		row = r.pool.QueryRow(ctx,
			`SELECT p.name, p.sku,
			        COALESCE(v.original_price, p.original_price),
			        COALESCE(v.discounted_price, p.discounted_price),
			        v.stock, (p.is_active AND v.is_active)
			 FROM products p
			 JOIN product_color_variants v ON v.product_id = p.id
			 WHERE p.id = $1 AND v.id = $2`,
			ref.ProductID, *ref.ColorVariantID,
		)
	}

	err := row.Scan(&unit.ProductName, &unit.ProductSKU, &unit.OriginalPrice, &unit.DiscountedPrice, &unit.Stock, &unit.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUnitNotFound
		}
		return nil, fmt.Errorf("resolve unit: %w", err)
	}

	return &unit, nil
}
