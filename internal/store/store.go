// Package store provides GORM-backed persistence for users, credentials,
// configs, records and the forbidden word list.
package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound reports that the requested row does not exist or is not
// visible to the requesting owner.
var ErrNotFound = errors.New("store: not found")

// ErrDuplicate reports a uniqueness conflict, such as adding a forbidden
// word that already exists in the same application scope.
var ErrDuplicate = errors.New("store: duplicate")

// translate maps GORM sentinel errors onto the store's own sentinels and
// wraps everything else with the operation name.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// MaskSecret hides a secret value for display, keeping only the last four
// characters. Short values are fully masked.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return "****"
	}
	return "***" + string(runes[len(runes)-4:])
}
