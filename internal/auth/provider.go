// Package auth resolves bearer tokens to users.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"execedge/internal/engine"
	"execedge/internal/storage"
)

type Provider struct {
	users storage.UserStore
	log   *zap.Logger
}

func NewProvider(users storage.UserStore, log *zap.Logger) *Provider {
	if log == nil {
		log = zap.NewNop()
	}
	return &Provider{users: users, log: log}
}

// Authenticate returns the user owning token, or engine.ErrUnauthenticated.
func (p *Provider) Authenticate(ctx context.Context, token string) (*storage.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, engine.ErrUnauthenticated
	}
	u, err := p.users.GetUserByToken(ctx, token)
	if err != nil {
		return nil, engine.StoreError{Op: "authenticate", Err: err}
	}
	if u == nil {
		p.log.Debug("unknown bearer token")
		return nil, engine.ErrUnauthenticated
	}
	return u, nil
}

// CreateUser registers a user with a fresh id and API token.
func (p *Provider) CreateUser(ctx context.Context, name string) (*storage.User, error) {
	return p.create(ctx, uuid.NewString(), name)
}

// EnsureUser returns the user with id, creating it on first use.
func (p *Provider) EnsureUser(ctx context.Context, id, name string) (*storage.User, error) {
	u, err := p.users.GetUser(ctx, id)
	if err != nil {
		return nil, engine.StoreError{Op: "get user", Err: err}
	}
	if u != nil {
		return u, nil
	}
	created, err := p.create(ctx, id, name)
	if errors.Is(err, storage.ErrConflict) {
		// another process created it first
		if u, gerr := p.users.GetUser(ctx, id); gerr == nil && u != nil {
			return u, nil
		}
	}
	return created, err
}

func (p *Provider) create(ctx context.Context, id, name string) (*storage.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, engine.ValidationError{Field: "name", Reason: "is required"}
	}
	u := storage.User{
		ID:        id,
		Name:      name,
		Token:     uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
	if err := p.users.InsertUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	p.log.Info("user created", zap.String("user_id", u.ID))
	return &u, nil
}
