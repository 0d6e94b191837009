package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	resp "github.com/zllovesuki/unaique/response"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
)

var bearerPrefix = "Bearer "
var jwtSigningMethod = jwt.SigningMethodRS256

var parser = &jwt.Parser{
	ValidMethods:         []string{jwtSigningMethod.Alg()},
	SkipClaimsValidation: true,
}

// verifyToken returns nil claims for any token that is not acceptable
func (a *Auth) verifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	jwtToken, err := parser.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwtSigningMethod {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return a.key, nil
	})
	if err != nil {
		if _, ok := err.(*jwt.ValidationError); ok {
			return nil, nil
		}
		return nil, err
	}
	if !jwtToken.Valid {
		return nil, nil
	}
	if !a.validTimes(claims, time.Now()) {
		return nil, nil
	}
	if claims.Subject == "" {
		return nil, nil
	}
	return claims, nil
}

func (a *Auth) validTimes(c *Claims, now time.Time) bool {
	leeway := int64(a.Leeway / time.Second)
	if !c.VerifyExpiresAt(now.Unix()-leeway, true) {
		return false
	}
	if !c.VerifyNotBefore(now.Unix()+leeway, false) {
		return false
	}
	return c.VerifyIssuedAt(now.Unix()+leeway, false)
}

func tokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	n := len(bearerPrefix)
	if len(header) > n && strings.EqualFold(header[:n], bearerPrefix) {
		return strings.TrimSpace(header[n:])
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware returns a http middleware to verify the session token in the
// Authorization header or the __session cookie
func (a *Auth) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				resp.WriteError(w, r, resp.ErrNoBearer())
				return
			}
			claims, err := a.verifyToken(token)
			if err != nil {
				a.Logger.Error("Cannot verify session token",
					zap.Error(err),
				)
				resp.WriteError(w, r, resp.ErrUnexpected())
				return
			}
			if claims == nil {
				resp.WriteError(w, r, resp.ErrNoBearer())
				return
			}

			ctx := context.WithValue(r.Context(), Context, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the verified claims, or nil on unauthenticated requests
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(Context).(*Claims)
	return claims
}

// UserID returns the Clerk user id of the caller, or "" on unauthenticated requests
func UserID(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}
