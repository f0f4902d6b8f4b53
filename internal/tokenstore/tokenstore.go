// Package tokenstore holds the locally persisted access token. The portal
// and the calculator only read it; writes come from the external login flow.
package tokenstore

import (
	"context"
	"fmt"

	"github.com/cicbolivia/portal/internal/config"
)

// AccessKey is the fixed key the access token is stored under.
const AccessKey = "access"

// Reader reads the stored token. An absent token is "" with a nil error.
type Reader interface {
	Token(ctx context.Context) (string, error)
}

// Store is a Reader that can also be written and cleared.
type Store interface {
	Reader
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
	Close() error
}

// Static is a Reader over a fixed value.
type Static string

func (s Static) Token(context.Context) (string, error) { return string(s), nil }

// Open selects the backend named by cfg.TokenStore.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.TokenStore {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.TokenFile)
	case "redis":
		return NewRedis(cfg.RedisURL, cfg.RedisPrefix)
	default:
		return nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
	}
}
