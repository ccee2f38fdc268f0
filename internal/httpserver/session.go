package httpserver

import (
	"context"
	"net/http"
	"strings"

	"commercetools-gateway/internal/domain"
	"github.com/gin-gonic/gin"
)

type ctxKey struct{ name string }

var ginCtxKey = ctxKey{name: "gin"}

const requestIDKey = "request_id"

func withGinContext(ctx context.Context, c *gin.Context) context.Context {
	return context.WithValue(ctx, ginCtxKey, c)
}

func ginFromContext(ctx context.Context) *gin.Context {
	c, _ := ctx.Value(ginCtxKey).(*gin.Context)
	return c
}

func requestID(ctx context.Context) string {
	if c := ginFromContext(ctx); c != nil {
		return c.GetString(requestIDKey)
	}
	return ""
}

// sessionToken reads the customer token from the session cookie, falling back to a
// bearer Authorization header.
func sessionToken(ctx context.Context, cookieName string) string {
	c := ginFromContext(ctx)
	if c == nil {
		return ""
	}
	if v, err := c.Cookie(cookieName); err == nil && v != "" {
		return v
	}
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// setSessionCookie stores the customer token in an HttpOnly cross-site cookie.
func setSessionCookie(ctx context.Context, cookieName string, tok *domain.AccessToken) {
	c := ginFromContext(ctx)
	if c == nil || tok == nil {
		return
	}
	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    tok.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	}
	if tok.ExpiresIn > 0 {
		cookie.MaxAge = tok.ExpiresIn
	}
	http.SetCookie(c.Writer, cookie)
}
