package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/mohannad-b/Wrkcodean-sub006/internal/domain"
)

type contextKey struct{}

// Verifier turns a bearer token into a session.
type Verifier interface {
	Verify(token string) (domain.Session, error)
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess domain.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session stored in ctx, or the zero session.
func FromContext(ctx context.Context) (domain.Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(domain.Session)
	return sess, ok
}

// Middleware verifies the bearer token of each request and stores the
// session in the request context. Requests without an Authorization header
// pass through anonymously; the services reject them where a session is
// required. A header that fails verification is answered with 401.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				writeUnauthorized(w)
				return
			}

			sess, err := v.Verify(parts[1])
			if err != nil {
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"title":"Unauthorized","status":401,"detail":"invalid session token"}`))
}
