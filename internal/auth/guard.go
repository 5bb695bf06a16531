package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"taskmanager/internal/logging"
	"taskmanager/internal/model"
)

const (
	verifiedContextKey = "auth.verified"
	userContextKey     = "auth.user"
	tokenContextKey    = "auth.token"
)

// SessionLookup resolves users and their active session tokens.
type SessionLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
}

// verifiedToken is what survives signature verification: the subject and
// the raw token needed for the membership check.
type verifiedToken struct {
	userID uuid.UUID
	raw    string
}

// Guard authenticates requests carrying a bearer token. A token passes only
// if its signature verifies AND it is still in the owner's token list.
type Guard struct {
	jwtService *JWTService
	sessions   SessionLookup
	logger     logging.Logger
}

// NewGuard creates the bearer token guard.
func NewGuard(jwtService *JWTService, sessions SessionLookup, logger logging.Logger) *Guard {
	return &Guard{
		jwtService: jwtService,
		sessions:   sessions,
		logger:     logger,
	}
}

// Middleware returns the echo middleware protecting a route or group.
// Every rejection is a 401 with an empty body.
func (g *Guard) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:     verifiedContextKey,
		TokenLookup:    "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: g.parseToken,
		ErrorHandler: func(c echo.Context, err error) error {
			return c.NoContent(http.StatusUnauthorized)
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(g.resolveSession(next))
	}
}

func (g *Guard) parseToken(c echo.Context, raw string) (interface{}, error) {
	userID, err := g.jwtService.ExtractUserID(raw)
	if err != nil {
		return nil, err
	}
	return &verifiedToken{userID: userID, raw: raw}, nil
}

func (g *Guard) resolveSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		vt, ok := c.Get(verifiedContextKey).(*verifiedToken)
		if !ok {
			return c.NoContent(http.StatusUnauthorized)
		}
		ctx := c.Request().Context()

		user, err := g.sessions.FindByID(ctx, vt.userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				g.logger.Error(ctx, "auth: load user", "user_id", vt.userID, "error", err)
			}
			return c.NoContent(http.StatusUnauthorized)
		}

		active, err := g.sessions.HasToken(ctx, user.ID, vt.raw)
		if err != nil {
			g.logger.Error(ctx, "auth: check session", "user_id", user.ID, "error", err)
			return c.NoContent(http.StatusUnauthorized)
		}
		if !active {
			return c.NoContent(http.StatusUnauthorized)
		}

		SetIdentity(c, user, vt.raw)
		return next(c)
	}
}

// SetIdentity attaches the authenticated user and the token it used.
func SetIdentity(c echo.Context, user *model.User, token string) {
	c.Set(userContextKey, user)
	c.Set(tokenContextKey, token)
}

// CurrentUser returns the user attached by the guard.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(userContextKey).(*model.User)
	return user, ok && user != nil
}

// CurrentToken returns the session token the request authenticated with.
func CurrentToken(c echo.Context) string {
	token, _ := c.Get(tokenContextKey).(string)
	return token
}
