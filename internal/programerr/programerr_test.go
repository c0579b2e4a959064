package programerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMatchesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("load pool: %w", ErrAccountNotInitialized)

	require.ErrorIs(t, wrapped, ErrAccountNotInitialized)
	require.False(t, errors.Is(wrapped, ErrConstraintSeeds))

	perr, ok := As(wrapped)
	require.True(t, ok)
	require.Equal(t, uint32(3012), perr.Code)
}

func TestErrorIsComparesCodeAndName(t *testing.T) {
	a := New(6000, "InvalidAmount", "Invalid amount provided")
	b := New(6000, "InvalidUtf8", "The provided title is not valid UTF-8.")
	c := New(6000, "InvalidAmount", "other text")

	require.False(t, errors.Is(a, b))
	require.True(t, errors.Is(a, c))
	require.Equal(t, "InvalidAmount (6000): Invalid amount provided", a.Error())
}
