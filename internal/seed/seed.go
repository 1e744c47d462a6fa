// Package seed loads the demo storefront: PC-part categories, a product
// catalogue, an admin and a handful of customers. Running it twice is safe;
// rows are matched by slug, SKU or email.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/hash"
	"github.com/appdotbuilder/pc-part-shop/internal/models"
)

const (
	AdminEmail      = "admin@pcparts.com"
	CustomerEmail   = "customer@example.com"
	DefaultPassword = "password"
)

type Options struct {
	Password string
	// ExtraCustomers adds customerN@example.com accounts.
	ExtraCustomers int
}

// Row counts rows per entity.
type Row struct {
	Entity   string
	Created  int
	Existing int
}

type Summary []Row

func (s Summary) Created() int {
	n := 0
	for _, r := range s {
		n += r.Created
	}
	return n
}

type tally struct{ created, existing int }

func (t *tally) add(created bool) {
	if created {
		t.created++
	} else {
		t.existing++
	}
}

func (t tally) row(entity string) Row {
	return Row{Entity: entity, Created: t.created, Existing: t.existing}
}

// Run seeds everything in a single transaction.
func Run(ctx context.Context, gdb *gorm.DB, opts Options) (Summary, error) {
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	pw, err := hash.HashPassword(opts.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var users, cats, products tally
	err = gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range demoUsers(opts.ExtraCustomers) {
			u.PasswordHash = pw
			created, err := firstOrCreate(tx, &u, "email = ?", u.Email)
			if err != nil {
				return fmt.Errorf("user %s: %w", u.Email, err)
			}
			users.add(created)
		}

		for _, cs := range catalogue {
			cat := cs.category
			cat.IsActive = true
			created, err := firstOrCreate(tx, &cat, "slug = ?", cat.Slug)
			if err != nil {
				return fmt.Errorf("category %s: %w", cat.Slug, err)
			}
			cats.add(created)

			for _, p := range cs.products {
				p.CategoryID = cat.ID
				created, err := firstOrCreate(tx, &p, "sku = ?", p.SKU)
				if err != nil {
					return fmt.Errorf("product %s: %w", p.SKU, err)
				}
				products.add(created)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Summary{users.row("users"), cats.row("categories"), products.row("products")}, nil
}

// firstOrCreate loads the row matching query into dst or inserts dst.
func firstOrCreate[T any](tx *gorm.DB, dst *T, query string, arg any) (bool, error) {
	var existing T
	err := tx.Where(query, arg).First(&existing).Error
	if err == nil {
		*dst = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return true, tx.Create(dst).Error
}

func demoUsers(extra int) []models.User {
	users := []models.User{
		{Name: "Admin User", Email: AdminEmail, Role: models.RoleAdmin},
		{Name: "John Customer", Email: CustomerEmail, Role: models.RoleCustomer},
	}
	for i := 1; i <= extra; i++ {
		users = append(users, models.User{
			Name:  fmt.Sprintf("Customer %d", i),
			Email: fmt.Sprintf("customer%d@example.com", i),
			Role:  models.RoleCustomer,
		})
	}
	return users
}

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sale(s string) *decimal.Decimal {
	d := price(s)
	return &d
}
