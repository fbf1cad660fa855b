package reactivity

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOnEffectCleanup_NoActiveEffectReturnsError(t *testing.T) {
	err := OnEffectCleanup(func() {})
	require.ErrorIs(t, err, ErrNoActiveEffect)
}

func TestOnEffectCleanup_NoActiveEffectFailSilentlySuppressesWarning(t *testing.T) {
	var logged bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logged, nil)))
	defer slog.SetDefault(prev)

	err := OnEffectCleanup(func() {}, true)
	require.ErrorIs(t, err, ErrNoActiveEffect)
	require.Empty(t, logged.String())
}

func TestOnEffectCleanup_InsideEffectReturnsNil(t *testing.T) {
	count := NewRef(0)
	var err error

	eff := NewEffect(func() {
		_ = count.Value()
		err = OnEffectCleanup(func() {})
	})
	defer eff.Stop()

	require.NoError(t, err)
}
