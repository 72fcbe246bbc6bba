// Package shortcode provides random short code generators.
package shortcode

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	KindUUID   = "uuid"
	KindNanoID = "nanoid"
)

var ErrInvalidLength = errors.New("invalid short code length")

// Generator returns a fresh random short code on every call.
type Generator func() (string, error)

// UUID returns a generator that truncates a random UUID to its first length characters.
func UUID(length int) Generator {
	return func() (string, error) {
		const op = "shortcode.UUID"

		if length <= 0 || length > 36 {
			return "", fmt.Errorf("%s: %w: %d", op, ErrInvalidLength, length)
		}

		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("%s: failed to generate uuid: %w", op, err)
		}

		return id.String()[:length], nil
	}
}

// NanoID returns a generator of URL-friendly nano IDs of the given length.
func NanoID(length int) Generator {
	return func() (string, error) {
		const op = "shortcode.NanoID"

		id, err := gonanoid.New(length)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}

		return id, nil
	}
}

// New returns the generator registered under kind.
func New(kind string, length int) (Generator, error) {
	switch kind {
	case KindUUID:
		return UUID(length), nil
	case KindNanoID:
		return NanoID(length), nil
	default:
		return nil, fmt.Errorf("shortcode.New: unknown generator %q", kind)
	}
}
