// Package store persists named JSON blobs: the favorites list, the stock
// portfolio and the gold account.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Blob keys.
const (
	KeyFavorites       = "favorites"
	KeyPortfolio       = "portfolio"
	KeyGoldPortfolio   = "gold_portfolio"
	KeyPortfolioExport = "portfolio_export"
)

// ErrNotFound is returned by Load when nothing was saved under the key.
var ErrNotFound = errors.New("blob not found")

// ErrCorrupt is returned by Load when the stored blob cannot be decoded.
var ErrCorrupt = errors.New("blob corrupt")

// Store loads and saves JSON-encodable values by key.
type Store interface {
	Load(ctx context.Context, key string, v any) error
	Save(ctx context.Context, key string, v any) error
	Close() error
}

// LoadOr loads key into a T. A missing key yields def with a nil error.
// A corrupt or unreadable blob yields def together with the error, so the
// caller can report it and carry on.
func LoadOr[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	var v T
	err := s.Load(ctx, key, &v)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, ErrNotFound):
		return def, nil
	default:
		return def, err
	}
}

func decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func encode(key string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return data, nil
}

func checkKey(key string) error {
	if key == "" {
		return errors.New("empty blob key")
	}
	for _, r := range key {
		if !(r == '_' || r == '-' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("invalid blob key %q", key)
		}
	}
	return nil
}
