package config

import (
	"errors"
	"fmt"
)

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error
	requireNonEmpty(&errs, c.DatabaseURL, "DATABASE_URL")
	requireNonEmptyBytes(&errs, c.JWTAccessSecret, "JWT_SECRET")
	requireNonEmptyBytes(&errs, c.JWTRefreshSecret, "JWT_REFRESH_SECRET")
	return errors.Join(errs...)
}

func requireNonEmpty(errs *[]error, value, envName string) {
	if value == "" {
		*errs = append(*errs, fmt.Errorf("missing required env %s", envName))
	}
}

func requireNonEmptyBytes(errs *[]error, value []byte, envName string) {
	if len(value) == 0 {
		*errs = append(*errs, fmt.Errorf("missing required env %s", envName))
	}
}
