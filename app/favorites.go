package app

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rustyeddy/investflow/accounting"
)

var (
	ErrDuplicateFavorite = errors.New("already in favorites")
	ErrNotFavorite       = errors.New("ticker not in favorites")
)

// Favorites is an ordered watch list of uppercase tickers.
type Favorites struct {
	mu      sync.Mutex
	list    []string
	persist func([]string) error
}

// NewFavorites builds a list from saved tickers, normalizing them and
// dropping blanks and repeats. persist may be nil.
func NewFavorites(saved []string, persist func([]string) error) *Favorites {
	f := &Favorites{persist: persist}
	for _, t := range saved {
		sym, err := accounting.NormalizeSymbol(t)
		if err != nil || slices.Contains(f.list, sym) {
			continue
		}
		f.list = append(f.list, sym)
	}
	return f
}

func (f *Favorites) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.list)
}

func (f *Favorites) Contains(ticker string) bool {
	sym, err := accounting.NormalizeSymbol(ticker)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Contains(f.list, sym)
}

// Add appends ticker. The list is saved only when it changed.
func (f *Favorites) Add(ticker string) (string, error) {
	sym, err := accounting.NormalizeSymbol(ticker)
	if err != nil {
		return "", fmt.Errorf("add favorite: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if slices.Contains(f.list, sym) {
		return sym, fmt.Errorf("add favorite %s: %w", sym, ErrDuplicateFavorite)
	}
	f.list = append(f.list, sym)
	return sym, f.saveLocked()
}

func (f *Favorites) Remove(ticker string) (string, error) {
	sym, err := accounting.NormalizeSymbol(ticker)
	if err != nil {
		return "", fmt.Errorf("remove favorite: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	i := slices.Index(f.list, sym)
	if i < 0 {
		return sym, fmt.Errorf("remove favorite %s: %w", sym, ErrNotFavorite)
	}
	f.list = slices.Delete(f.list, i, i+1)
	return sym, f.saveLocked()
}

// Save persists the current list.
func (f *Favorites) Save() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveLocked()
}

func (f *Favorites) saveLocked() error {
	if f.persist == nil {
		return nil
	}
	if err := f.persist(append([]string{}, f.list...)); err != nil {
		return accounting.Persisted(err)
	}
	return nil
}
