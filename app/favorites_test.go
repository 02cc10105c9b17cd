package app

import (
	"errors"
	"testing"

	"github.com/rustyeddy/investflow/accounting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFavoritesNormalizes(t *testing.T) {
	f := NewFavorites([]string{"aapl", " msft ", "AAPL", ""}, nil)
	assert.Equal(t, []string{"AAPL", "MSFT"}, f.List())
	assert.True(t, f.Contains("msft"))
	assert.False(t, f.Contains("TSLA"))
}

func TestFavoritesAddRemove(t *testing.T) {
	var saved [][]string
	f := NewFavorites(nil, func(list []string) error {
		saved = append(saved, list)
		return nil
	})

	sym, err := f.Add("tsla")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", sym)

	_, err = f.Add("nvda")
	require.NoError(t, err)
	assert.Equal(t, []string{"TSLA", "NVDA"}, f.List())

	_, err = f.Add("TSLA")
	assert.ErrorIs(t, err, ErrDuplicateFavorite)

	_, err = f.Remove("tsla")
	require.NoError(t, err)
	assert.Equal(t, []string{"NVDA"}, f.List())

	_, err = f.Remove("TSLA")
	assert.ErrorIs(t, err, ErrNotFavorite)

	// only the three changes were saved
	require.Len(t, saved, 3)
	assert.Equal(t, []string{"NVDA"}, saved[2])
}

func TestFavoritesRejectsBlank(t *testing.T) {
	f := NewFavorites(nil, nil)
	_, err := f.Add("  ")
	assert.ErrorIs(t, err, accounting.ErrInvalidInput)
	assert.Empty(t, f.List())
}

func TestFavoritesPersistFailureKeepsChange(t *testing.T) {
	f := NewFavorites(nil, func([]string) error { return errors.New("disk full") })

	_, err := f.Add("AAPL")
	assert.ErrorIs(t, err, accounting.ErrPersistence)
	assert.Equal(t, []string{"AAPL"}, f.List())
}

func TestFavoritesSaveEmptyList(t *testing.T) {
	var got []string
	f := NewFavorites(nil, func(list []string) error {
		got = list
		return nil
	})
	require.NoError(t, f.Save())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
