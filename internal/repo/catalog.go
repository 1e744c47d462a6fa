package repo

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

var sortColumns = map[string]string{
	"name":       "name",
	"price":      "price",
	"created_at": "created_at",
}

// SortColumn reports whether s is an allow-listed product sort column.
func SortColumn(s string) (string, bool) {
	col, ok := sortColumns[s]
	return col, ok
}

type ProductFilter struct {
	ActiveOnly   bool
	CategorySlug string
	CategoryID   uint
	Brand        string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Search       string
	Sort         string
	Desc         bool
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func (f ProductFilter) scope(q *gorm.DB) *gorm.DB {
	if f.ActiveOnly {
		q = q.Where("products.is_active = ?", true)
	}
	if f.CategorySlug != "" {
		sub := q.Session(&gorm.Session{NewDB: true}).
			Model(&models.Category{}).
			Select("id").
			Where("slug = ?", f.CategorySlug)
		q = q.Where("products.category_id IN (?)", sub)
	}
	if f.CategoryID != 0 {
		q = q.Where("products.category_id = ?", f.CategoryID)
	}
	if f.Brand != "" {
		q = q.Where("products.brand = ?", f.Brand)
	}
	if f.MinPrice != nil {
		q = q.Where("products.price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("products.price <= ?", *f.MaxPrice)
	}
	if strings.TrimSpace(f.Search) != "" {
		like := likePattern(f.Search)
		q = q.Where("(LOWER(products.name) LIKE ? OR LOWER(products.sku) LIKE ?)", like, like)
	}
	return q
}

func (f ProductFilter) order(q *gorm.DB) *gorm.DB {
	col, ok := SortColumn(f.Sort)
	if !ok {
		col = "name"
	}
	return q.
		Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: col}, Desc: f.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "products", Name: "id"}, Desc: f.Desc})
}

func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(f.scope).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Scopes(f.scope, f.order).
		Preload("Category").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetActiveProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) RelatedProducts(ctx context.Context, p *models.Product, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("is_active = ? AND category_id = ? AND id <> ?", true, p.CategoryID, p.ID).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

// FeaturedProducts returns active featured products that can still be bought.
func (r *GormRepo) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	items := make([]models.Product, 0, limit)
	err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("is_active = ? AND is_featured = ?", true, true).
		Where("(manage_stock = ? OR stock_quantity > 0)", false).
		Order("id ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormRepo) ActiveCategories(ctx context.Context, limit int) ([]models.Category, error) {
	var cats []models.Category
	q := r.DB.WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC").Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) AllCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	err := r.DB.WithContext(ctx).Order("sort_order ASC").Order("id ASC").Find(&cats).Error
	return cats, err
}

// Brands lists the distinct brands of active products, sorted.
func (r *GormRepo) Brands(ctx context.Context) ([]string, error) {
	var brands []string
	err := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct("brand").
		Order("brand ASC").
		Pluck("brand", &brands).Error
	return brands, err
}

func (r *GormRepo) CategoryExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) SKUTaken(ctx context.Context, sku string, exceptID uint) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("sku = ?", sku)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("slug = ?", slug)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

// SaveProduct writes every column, including false bools and a nil sale price.
func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Omit("Category").Save(p).Error
}

// DeleteProduct removes the product and any cart lines pointing at it.
// Order items are snapshots and stay untouched.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}
