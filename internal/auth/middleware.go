package auth

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	apperrors "facilityhub/internal/errors"
)

const claimsContextKey = "session"

// ErrTokenRevoked is returned for a token whose ID was revoked by logout.
var ErrTokenRevoked = errors.New("token revoked")

// SessionMessage is the single client-facing message for every session failure.
const SessionMessage = "Invalid or expired session"

// RequireSession returns echo middleware that accepts only requests carrying a
// valid "Authorization: Bearer <token>" header. The verified claims are stored
// on the context, see SessionClaims. store may be nil when revocation is not
// tracked by the calling process.
func RequireSession(jwtService *JWTService, store TokenStoreInterface) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  claimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := jwtService.Verify(token)
			if err != nil {
				return nil, err
			}
			if store != nil {
				revoked, err := store.IsRevoked(c.Request().Context(), claims.ID)
				if err != nil {
					return nil, err
				}
				if revoked {
					return nil, ErrTokenRevoked
				}
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			zerolog.Ctx(c.Request().Context()).Info().
				Err(err).
				Str("path", c.Path()).
				Msg("session rejected")
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Detail: SessionMessage,
				Code:   "INVALID_SESSION",
			})
		},
	})
}

// SessionClaims returns the claims stored by RequireSession.
func SessionClaims(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(claimsContextKey).(*Claims)
	return claims, ok
}
