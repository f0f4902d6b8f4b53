// Package guard gates protected views on the presence of a stored access
// token. Presence is all that is checked: the token is never decoded,
// validated or refreshed here.
package guard

import (
	"context"
	"strings"

	"github.com/cicbolivia/portal/internal/logger"
	"github.com/cicbolivia/portal/internal/tokenstore"
	"github.com/cicbolivia/portal/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// DefaultLoginPath is where unauthenticated visitors are sent.
const DefaultLoginPath = "/login"

// Allow reports whether a protected view may render for token.
func Allow(token string) bool {
	return token != ""
}

// Decision is the outcome of a guard check.
type Decision struct {
	Render   bool
	Redirect string
}

// Decide reads the token and decides between rendering and redirecting to
// loginPath. A read error counts as an absent token.
func Decide(ctx context.Context, tokens tokenstore.Reader, loginPath string) Decision {
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	token, err := tokens.Token(ctx)
	if err != nil {
		logger.Get().Warn().Err(err).Msg("Could not read access token")
		return Decision{Redirect: loginPath}
	}
	if !Allow(token) {
		return Decision{Redirect: loginPath}
	}
	return Decision{Render: true}
}

// Config defines the config for the guard middleware
type Config struct {
	// Next defines a function to skip middleware.
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Lookup extracts the token from the request.
	// Optional. Default: "access" cookie, then "Authorization: Bearer".
	Lookup func(c *fiber.Ctx) string

	// LoginPath is the redirect target for requests without a token.
	// Optional. Default: "/login"
	LoginPath string

	// ContextKey is the key the token is stored under in c.Locals.
	// Optional. Default: "token"
	ContextKey string
}

// ConfigDefault is the default config
var ConfigDefault = Config{
	Lookup:     LookupCookieOrBearer,
	LoginPath:  DefaultLoginPath,
	ContextKey: "token",
}

// LookupCookieOrBearer reads the access cookie, falling back to a bearer
// Authorization header.
func LookupCookieOrBearer(c *fiber.Ctx) string {
	if token := c.Cookies(tokenstore.AccessKey); token != "" {
		return token
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}

// New creates the guard middleware. Requests without a token are
// redirected to the login path; any non-empty token passes.
func New(config ...Config) fiber.Handler {
	cfg := ConfigDefault

	if len(config) > 0 {
		cfg = config[0]

		if cfg.Lookup == nil {
			cfg.Lookup = ConfigDefault.Lookup
		}
		if cfg.LoginPath == "" {
			cfg.LoginPath = ConfigDefault.LoginPath
		}
		if cfg.ContextKey == "" {
			cfg.ContextKey = ConfigDefault.ContextKey
		}
	}

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}

		d := Decide(c.UserContext(), tokenstore.Static(cfg.Lookup(c)), cfg.LoginPath)
		if !d.Render {
			logger.Get().Info().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Protected view requested without token")
			return c.Redirect(d.Redirect, fiber.StatusFound)
		}

		token := cfg.Lookup(c)
		logger.Get().Debug().
			Str("path", c.Path()).
			Str("token_fingerprint", utils.Fingerprint(token)).
			Msg("Protected view allowed")

		c.Locals(cfg.ContextKey, token)
		return c.Next()
	}
}
