package service

import (
	"context"
	"time"

	"github.com/appdotbuilder/pc-part-shop/internal/logging"
	"github.com/appdotbuilder/pc-part-shop/internal/repo"
	"github.com/appdotbuilder/pc-part-shop/internal/validate"
)

// Caller is the identity a cart or order operation acts for.
type Caller struct {
	UserID    *uint
	SessionID string
	Role      string
}

func (c Caller) Authenticated() bool { return c.UserID != nil }

func (c Caller) cartOwner() (repo.CartOwner, error) {
	if c.UserID == nil && c.SessionID == "" {
		return repo.CartOwner{}, ErrUnauthorized
	}
	return repo.CartOwner{UserID: c.UserID, SessionID: c.SessionID}, nil
}

type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
	InvalidateCatalog(ctx context.Context) error
}

const publishTimeout = 5 * time.Second

// publish sends an event after the fact. Failures are logged and never
// reach the caller.
func publish(ctx context.Context, pub Publisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := pub.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "key", key, "error", err)
	}
}

// cached reads key from c or fills it from load.
func cached[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}
	l := logging.FromContext(ctx)

	var v T
	hit, err := c.GetJSON(ctx, key, &v)
	if err != nil {
		l.Warn("cache_get_failed", "key", key, "error", err)
	}
	if hit {
		return v, nil
	}

	v, err = load(ctx)
	if err != nil {
		return v, err
	}
	if err := c.SetJSON(ctx, key, v); err != nil {
		l.Warn("cache_set_failed", "key", key, "error", err)
	}
	return v, nil
}

func invalidate(ctx context.Context, c Cache, keys ...string) {
	if c == nil {
		return
	}
	var err error
	if len(keys) == 0 {
		err = c.InvalidateCatalog(ctx)
	} else {
		err = c.Delete(ctx, keys...)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("cache_invalidate_failed", "keys", keys, "error", err)
	}
}

func validateStruct(v any) error {
	fields, err := validate.Struct(v)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
