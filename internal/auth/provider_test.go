package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"execedge/internal/engine"
	"execedge/internal/storage"
)

func TestProvider(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(storage.NewMemoryStore(), nil)

	u, err := p.CreateUser(ctx, "Dana")
	require.NoError(t, err)
	assert.NotEmpty(t, u.Token)

	got, err := p.Authenticate(ctx, " "+u.Token+" ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = p.Authenticate(ctx, "nope")
	assert.ErrorIs(t, err, engine.ErrUnauthenticated)
	_, err = p.Authenticate(ctx, "")
	assert.ErrorIs(t, err, engine.ErrUnauthenticated)

	_, err = p.CreateUser(ctx, "  ")
	var ve engine.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestEnsureUserIsStable(t *testing.T) {
	ctx := context.Background()
	p := NewProvider(storage.NewMemoryStore(), nil)

	first, err := p.EnsureUser(ctx, storage.MainUserID, "Main")
	require.NoError(t, err)
	second, err := p.EnsureUser(ctx, storage.MainUserID, "Main")
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
}
