package session

import (
	"context"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type ctxKey struct{}

func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}

// Tokens reads the bearer token of the session carried by ctx, so one API
// client can serve every session.
var Tokens clients.TokenSource = clients.TokenFunc(func(ctx context.Context) (string, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return "", nil
	}
	return s.Token(ctx)
})

// EvictOnUnauthorized returns the API's 401 hook: it logs the session in ctx
// out.
func EvictOnUnauthorized(logger *zap.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		s, ok := FromContext(ctx)
		if !ok {
			return
		}
		if err := s.Logout(ctx); err != nil {
			logger.Warn("evict session", zap.String("session_id", s.ID()), zap.Error(err))
			return
		}
		logger.Info("session evicted after 401", zap.String("session_id", s.ID()))
	}
}
