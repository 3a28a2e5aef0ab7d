package keys

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved lists characters a logical key must not contain. They belong to the
// salting scheme and to backend wire protocols.
const Reserved = `{}()/\@:`

// ErrInvalidKey is returned for empty keys and keys containing Reserved characters.
var ErrInvalidKey = errors.New("cache: invalid key")

// KeyError reports the offending key. It unwraps to ErrInvalidKey.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	if e.Key == "" {
		return "cache key must not be empty"
	}
	return fmt.Sprintf("cache key %q contains illegal characters: keys must not contain any of %s", e.Key, Reserved)
}

func (e *KeyError) Unwrap() error { return ErrInvalidKey }

// Validate checks a single logical key.
func Validate(key string) error {
	if key == "" || strings.ContainsAny(key, Reserved) {
		return &KeyError{Key: key}
	}
	return nil
}

// ValidateAll checks every key and stops at the first bad one.
func ValidateAll(keys []string) error {
	for _, k := range keys {
		if err := Validate(k); err != nil {
			return err
		}
	}
	return nil
}
