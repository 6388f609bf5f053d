package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-catalog-service/internal/apperror"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/platform/postgres"
	"github.com/fekuna/omnipos-catalog-service/internal/product"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var productColumns = []string{
	"id", "name", "slug", "sku", "gtin", "price",
	"short_description", "description", "specification",
	"meta_title", "meta_keyword", "meta_description",
	"length", "width", "height", "weight", "dimension_unit",
	"is_published", "is_featured", "is_allowed_to_order", "is_visible_individually",
	"stock_tracking_enabled", "has_options", "stock_quantity",
	"brand_id", "parent_id", "thumbnail_media_id", "tax_class_id",
	"created_at", "updated_at",
}

var (
	selectProduct = "SELECT " + strings.Join(productColumns, ", ") + " FROM products"
	upsertProduct = buildUpsert()
)

func buildUpsert() string {
	named := make([]string, len(productColumns))
	var updates []string
	for i, col := range productColumns {
		named[i] = ":" + col
		if col != "id" && col != "created_at" {
			updates = append(updates, col+" = EXCLUDED."+col)
		}
	}
	return "INSERT INTO products (" + strings.Join(productColumns, ", ") + ") VALUES (" +
		strings.Join(named, ", ") + ") ON CONFLICT (id) DO UPDATE SET " +
		strings.Join(updates, ", ") + " RETURNING " + strings.Join(productColumns, ", ")
}

// constraintFields names the request field behind each unique index.
var constraintFields = map[string]string{
	"products_slug_published_idx":                    "Slug",
	"products_sku_published_idx":                     "SKU",
	"products_gtin_published_idx":                    "GTIN",
	"product_option_values_product_option_idx":       "Option value",
	"product_option_combinations_product_option_idx": "Option combination",
}

type PGRepository struct {
	DB *sqlx.DB
	db sqlx.ExtContext
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db, db: db}
}

func (r *PGRepository) WithTx(ctx context.Context, fn func(repo product.Repository) error) error {
	if _, inTx := r.db.(*sqlx.Tx); inTx {
		return fn(r)
	}

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&PGRepository{DB: r.DB, db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return translate(err)
	}
	return nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, selectProduct+" WHERE id = $1 LIMIT 1", id)
}

func (r *PGRepository) FindAllByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(selectProduct+" WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := sqlx.SelectContext(ctx, r.db, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

func (r *PGRepository) FindPublishedBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.findOne(ctx, selectProduct+" WHERE slug = $1 AND is_published LIMIT 1", slug)
}

func (r *PGRepository) FindPublishedBySKU(ctx context.Context, sku string) (*model.Product, error) {
	return r.findOne(ctx, selectProduct+" WHERE sku = $1 AND is_published LIMIT 1", sku)
}

func (r *PGRepository) FindPublishedByGTIN(ctx context.Context, gtin string) (*model.Product, error) {
	return r.findOne(ctx, selectProduct+" WHERE gtin = $1 AND is_published LIMIT 1", gtin)
}

func (r *PGRepository) FindAllByParent(ctx context.Context, parentID string) ([]model.Product, error) {
	var products []model.Product
	query := selectProduct + " WHERE parent_id = $1 ORDER BY created_at ASC, id ASC"
	if err := sqlx.SelectContext(ctx, r.db, &products, query, parentID); err != nil {
		return nil, fmt.Errorf("find variants of %s: %w", parentID, err)
	}
	return products, nil
}

func (r *PGRepository) findOne(ctx context.Context, query string, arg string) (*model.Product, error) {
	var p model.Product
	err := sqlx.GetContext(ctx, r.db, &p, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return &p, nil
}

func (r *PGRepository) Save(ctx context.Context, p *model.Product) error {
	saved, err := r.upsert(ctx, p)
	if err != nil {
		return err
	}
	p.CreatedAt = saved.CreatedAt
	p.UpdatedAt = saved.UpdatedAt
	return nil
}

func (r *PGRepository) SaveAll(ctx context.Context, products []model.Product) ([]model.Product, error) {
	saved := make([]model.Product, 0, len(products))
	for i := range products {
		p, err := r.upsert(ctx, &products[i])
		if err != nil {
			return nil, err
		}
		saved = append(saved, *p)
	}
	return saved, nil
}

func (r *PGRepository) upsert(ctx context.Context, p *model.Product) (*model.Product, error) {
	rows, err := sqlx.NamedQueryContext(ctx, r.db, upsertProduct, p)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, translate(err)
		}
		return nil, fmt.Errorf("save product %s: no row returned", p.ID)
	}
	var saved model.Product
	if err := rows.StructScan(&saved); err != nil {
		return nil, fmt.Errorf("scan product %s: %w", p.ID, err)
	}
	return &saved, nil
}

func (r *PGRepository) DeleteOptionValuesByProduct(ctx context.Context, productID string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM product_option_values WHERE product_id = $1", productID); err != nil {
		return fmt.Errorf("delete option values of %s: %w", productID, err)
	}
	return nil
}

func (r *PGRepository) SaveOptionValues(ctx context.Context, values []model.ProductOptionValue) ([]model.ProductOptionValue, error) {
	if len(values) == 0 {
		return nil, nil
	}
	query := `
        INSERT INTO product_option_values (id, product_id, product_option_id, display_type, display_order, option_values)
        VALUES (:id, :product_id, :product_option_id, :display_type, :display_order, :option_values)
    `
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, values); err != nil {
		return nil, translate(err)
	}
	return values, nil
}

func (r *PGRepository) FindOptionValuesByProduct(ctx context.Context, productID string) ([]model.ProductOptionValue, error) {
	var values []model.ProductOptionValue
	query := `SELECT id, product_id, product_option_id, display_type, display_order, option_values
        FROM product_option_values WHERE product_id = $1 ORDER BY display_order ASC`
	if err := sqlx.SelectContext(ctx, r.db, &values, query, productID); err != nil {
		return nil, fmt.Errorf("find option values of %s: %w", productID, err)
	}
	return values, nil
}

func (r *PGRepository) DeleteOptionCombinationsByProducts(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM product_option_combinations WHERE product_id IN (?)", productIDs)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("delete option combinations: %w", err)
	}
	return nil
}

func (r *PGRepository) SaveOptionCombinations(ctx context.Context, combinations []model.ProductOptionCombination) error {
	if len(combinations) == 0 {
		return nil
	}
	query := `
        INSERT INTO product_option_combinations (id, product_id, product_option_id, value, display_order)
        VALUES (:id, :product_id, :product_option_id, :value, :display_order)
    `
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, combinations); err != nil {
		return translate(err)
	}
	return nil
}

func (r *PGRepository) FindOptionCombinationsByProducts(ctx context.Context, productIDs []string) ([]model.ProductOptionCombination, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, product_id, product_option_id, value, display_order
        FROM product_option_combinations WHERE product_id IN (?) ORDER BY display_order ASC`, productIDs)
	if err != nil {
		return nil, err
	}
	var combinations []model.ProductOptionCombination
	if err := sqlx.SelectContext(ctx, r.db, &combinations, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find option combinations: %w", err)
	}
	return combinations, nil
}

func (r *PGRepository) ReplaceImages(ctx context.Context, productID string, imageIDs []string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM product_images WHERE product_id = $1", productID); err != nil {
		return fmt.Errorf("delete images of %s: %w", productID, err)
	}
	if len(imageIDs) == 0 {
		return nil
	}
	now := time.Now()
	images := make([]model.ProductImage, len(imageIDs))
	for i, imageID := range imageIDs {
		images[i] = model.ProductImage{
			ID:           uuid.New().String(),
			ProductID:    productID,
			ImageID:      imageID,
			DisplayOrder: i,
			CreatedAt:    now,
		}
	}
	query := `
        INSERT INTO product_images (id, product_id, image_id, display_order, created_at)
        VALUES (:id, :product_id, :image_id, :display_order, :created_at)
    `
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, images); err != nil {
		return fmt.Errorf("save images of %s: %w", productID, err)
	}
	return nil
}

func (r *PGRepository) FindImagesByProduct(ctx context.Context, productID string) ([]model.ProductImage, error) {
	var images []model.ProductImage
	query := `SELECT id, product_id, image_id, display_order, created_at
        FROM product_images WHERE product_id = $1 ORDER BY display_order ASC`
	if err := sqlx.SelectContext(ctx, r.db, &images, query, productID); err != nil {
		return nil, fmt.Errorf("find images of %s: %w", productID, err)
	}
	return images, nil
}

func (r *PGRepository) ReplaceCategories(ctx context.Context, productID string, categoryIDs []string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM product_categories WHERE product_id = $1", productID); err != nil {
		return fmt.Errorf("delete categories of %s: %w", productID, err)
	}
	if len(categoryIDs) == 0 {
		return nil
	}
	links := make([]model.ProductCategory, len(categoryIDs))
	for i, categoryID := range categoryIDs {
		links[i] = model.ProductCategory{
			ID:           uuid.New().String(),
			ProductID:    productID,
			CategoryID:   categoryID,
			DisplayOrder: i,
		}
	}
	query := `
        INSERT INTO product_categories (id, product_id, category_id, display_order)
        VALUES (:id, :product_id, :category_id, :display_order)
    `
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, links); err != nil {
		return fmt.Errorf("save categories of %s: %w", productID, err)
	}
	return nil
}

func (r *PGRepository) FindCategoriesByProduct(ctx context.Context, productID string) ([]model.ProductCategory, error) {
	var links []model.ProductCategory
	query := `SELECT id, product_id, category_id, display_order
        FROM product_categories WHERE product_id = $1 ORDER BY display_order ASC`
	if err := sqlx.SelectContext(ctx, r.db, &links, query, productID); err != nil {
		return nil, fmt.Errorf("find categories of %s: %w", productID, err)
	}
	return links, nil
}

func (r *PGRepository) ReplaceRelated(ctx context.Context, productID string, relatedIDs []string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM product_related WHERE product_id = $1", productID); err != nil {
		return fmt.Errorf("delete related products of %s: %w", productID, err)
	}
	if len(relatedIDs) == 0 {
		return nil
	}
	links := make([]model.ProductRelated, len(relatedIDs))
	for i, relatedID := range relatedIDs {
		links[i] = model.ProductRelated{
			ID:               uuid.New().String(),
			ProductID:        productID,
			RelatedProductID: relatedID,
		}
	}
	query := `
        INSERT INTO product_related (id, product_id, related_product_id)
        VALUES (:id, :product_id, :related_product_id)
    `
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, links); err != nil {
		return fmt.Errorf("save related products of %s: %w", productID, err)
	}
	return nil
}

func (r *PGRepository) FindRelatedByProduct(ctx context.Context, productID string) ([]model.ProductRelated, error) {
	var links []model.ProductRelated
	query := `SELECT id, product_id, related_product_id FROM product_related WHERE product_id = $1`
	if err := sqlx.SelectContext(ctx, r.db, &links, query, productID); err != nil {
		return nil, fmt.Errorf("find related products of %s: %w", productID, err)
	}
	return links, nil
}

// translate turns unique violations into Duplicated errors and leaves everything else as is.
func translate(err error) error {
	constraint, ok := postgres.UniqueViolation(err)
	if !ok {
		return err
	}
	field, known := constraintFields[constraint]
	if !known {
		field = "Value"
	}
	return apperror.Wrap(apperror.KindDuplicated, err, "%s is already existed or is duplicated", field)
}
