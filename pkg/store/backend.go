// Package store is a key/value store whose backend connection is owned by a
// concurrent.Object.
//
// Backends hold a single connection (one *sql.Conn, one *pgx.Conn, one
// *redis.Conn, one mongo.Session) and are not safe for concurrent use on
// their own. Wrapping them with Open serializes every operation onto the
// object's background goroutine, so a Store can be shared freely.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("store: key not found")

	// ErrInvalidKey is returned for keys that are empty or too long.
	ErrInvalidKey = errors.New("store: invalid key")

	// ErrInvalidName is returned for table, collection, or prefix names that
	// cannot be used safely.
	ErrInvalidName = errors.New("store: invalid name")
)

// MaxKeyLen is the longest key accepted by Store.
const MaxKeyLen = 512

// Backend is a single-connection key/value backend.
//
// Implementations need not be safe for concurrent use. Keys returns keys in
// ascending order. Delete of a missing key returns ErrNotFound.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

var (
	sqlIdent  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)
	keyPrefix = regexp.MustCompile(`^[A-Za-z0-9_.:\-]{1,128}$`)

	validate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("sqlident", func(fl validator.FieldLevel) bool {
		return sqlIdent.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("keyprefix", func(fl validator.FieldLevel) bool {
		return keyPrefix.MatchString(fl.Field().String())
	})
	return v
}

func validateKey(key string) error {
	if err := validate.Var(key, fmt.Sprintf("required,max=%d", MaxKeyLen)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

func validateName(kind, name, tag string) error {
	if err := validate.Var(name, tag); err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalidName, kind, name)
	}
	return nil
}
