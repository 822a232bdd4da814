package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetriable(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, Retriable(nil))
	})

	t.Run("marks errors retriable", func(t *testing.T) {
		base := errors.New("stale metadata")
		err := Retriable(base)

		require.True(t, IsRetriable(err))
		require.ErrorIs(t, err, base)
	})

	t.Run("survives further wrapping", func(t *testing.T) {
		err := fmt.Errorf("fetch allocation: %w", Retriable(errors.New("not yet visible")))
		require.True(t, IsRetriable(err))
	})

	t.Run("plain errors are fatal", func(t *testing.T) {
		require.False(t, IsRetriable(errors.New("unauthorized")))
		require.False(t, IsRetriable(ErrReplicaCountReduced))
	})
}
