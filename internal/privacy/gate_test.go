package privacy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateStartsClosed(t *testing.T) {
	g := New(false)
	require.False(t, g.Agreed())
}

func TestGateAgreeOpens(t *testing.T) {
	g := New(false)
	require.NoError(t, g.Agree(context.Background()))
	require.True(t, g.Agreed())
}

func TestGateAgreeIsIdempotent(t *testing.T) {
	g := New(false)
	require.NoError(t, g.Agree(context.Background()))
	require.NoError(t, g.Agree(context.Background()))
	require.True(t, g.Agreed())
}

func TestGateImplicitStartsOpen(t *testing.T) {
	g := New(true)
	require.True(t, g.Agreed())
	require.NoError(t, g.Agree(context.Background()))
	require.True(t, g.Agreed())
}
