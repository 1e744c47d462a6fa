package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/appdotbuilder/pc-part-shop/internal/db"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(gdb *gorm.DB) *GormRepo {
	return &GormRepo{DB: gdb}
}

// WithTx binds a copy of the repo to an open transaction.
func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx}
}

// InTx runs fn inside a transaction, repeating it per opts.
func (r *GormRepo) InTx(ctx context.Context, opts db.RetryOptions, fn func(tx *GormRepo) error) error {
	return db.WithRetry(ctx, r.DB, opts, func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return db.Ping(ctx, r.DB)
}
