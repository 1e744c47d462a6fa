package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/cache"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/transport"
	"github.com/appdotbuilder/pc-part-shop/internal/util"
)

const (
	StorefrontPageSize = 12
	relatedLimit       = 4
	featuredLimit      = 8
	homeCategoryLimit  = 6
)

type CatalogService struct {
	Repo  *repo.GormRepo
	Cache Cache
}

type ProductListing struct {
	Products   util.Page[models.Product] `json:"products"`
	Categories []models.Category         `json:"categories"`
	Brands     []string                  `json:"brands"`
	Filters    map[string]string         `json:"filters"`
}

type ProductDetail struct {
	Product         *models.Product  `json:"product"`
	RelatedProducts []models.Product `json:"related_products"`
}

type Home struct {
	FeaturedProducts []models.Product  `json:"featured_products"`
	Categories       []models.Category `json:"categories"`
}

func parsePrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// echoFilters returns the non-empty query values the listing was built from.
func echoFilters(q transport.ProductQuery) map[string]string {
	out := map[string]string{}
	for k, v := range map[string]string{
		"category":  q.Category,
		"brand":     q.Brand,
		"min_price": q.MinPrice,
		"max_price": q.MaxPrice,
		"search":    q.Search,
		"sort":      q.Sort,
		"order":     q.Order,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

func (s *CatalogService) ListProducts(ctx context.Context, q transport.ProductQuery) (*ProductListing, error) {
	sortBy := q.Sort
	if sortBy == "" {
		sortBy = "name"
	}
	f := repo.ProductFilter{
		ActiveOnly:   true,
		CategorySlug: q.Category,
		Brand:        q.Brand,
		MinPrice:     parsePrice(q.MinPrice),
		MaxPrice:     parsePrice(q.MaxPrice),
		Search:       q.Search,
		Sort:         sortBy,
		Desc:         strings.EqualFold(q.Order, "desc"),
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, StorefrontPageSize)
	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	cats, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}
	brands, err := s.Brands(ctx)
	if err != nil {
		return nil, err
	}

	return &ProductListing{
		Products:   util.NewPage(items, page, limit, total),
		Categories: cats,
		Brands:     brands,
		Filters:    echoFilters(q),
	}, nil
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s.Cache, cache.KeyCategories, func(ctx context.Context) ([]models.Category, error) {
		cats, err := s.Repo.ActiveCategories(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		return cats, nil
	})
}

func (s *CatalogService) Brands(ctx context.Context) ([]string, error) {
	return cached(ctx, s.Cache, cache.KeyBrands, func(ctx context.Context) ([]string, error) {
		brands, err := s.Repo.Brands(ctx)
		if err != nil {
			return nil, fmt.Errorf("list brands: %w", err)
		}
		if brands == nil {
			brands = []string{}
		}
		return brands, nil
	})
}

func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*ProductDetail, error) {
	return cached(ctx, s.Cache, cache.ProductKey(slug), func(ctx context.Context) (*ProductDetail, error) {
		p, err := s.Repo.GetActiveProductBySlug(ctx, slug)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %q: %w", slug, ErrNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		related, err := s.Repo.RelatedProducts(ctx, p, relatedLimit)
		if err != nil {
			return nil, fmt.Errorf("related products: %w", err)
		}
		return &ProductDetail{Product: p, RelatedProducts: related}, nil
	})
}

func (s *CatalogService) Home(ctx context.Context) (*Home, error) {
	return cached(ctx, s.Cache, cache.KeyHome, func(ctx context.Context) (*Home, error) {
		featured, err := s.Repo.FeaturedProducts(ctx, featuredLimit)
		if err != nil {
			return nil, fmt.Errorf("featured products: %w", err)
		}
		cats, err := s.Repo.ActiveCategories(ctx, homeCategoryLimit)
		if err != nil {
			return nil, fmt.Errorf("home categories: %w", err)
		}
		return &Home{FeaturedProducts: featured, Categories: cats}, nil
	})
}
