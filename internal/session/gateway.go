// Package session provides account registration and password sign-in.
package session

import (
	"context"

	"go.uber.org/zap"

	"todo/internal/service"
)

// Gateway is the single entry point for auth calls. It performs no input
// validation; whatever the backend says about a bad email or a short
// password is surfaced to the caller unchanged.
type Gateway struct {
	auth   service.Auth
	logger *zap.Logger
}

// NewGateway creates a gateway over the given auth backend.
func NewGateway(auth service.Auth, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{auth: auth, logger: log.Named("session")}
}

// SignIn exchanges credentials for a session.
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	sess, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		g.logger.Debug("sign in failed", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	g.logger.Debug("signed in", zap.String("user_id", sess.User.ID))
	return sess, nil
}

// SignUp registers a new account. It does not sign the user in.
func (g *Gateway) SignUp(ctx context.Context, email, password string) error {
	if err := g.auth.SignUp(ctx, email, password); err != nil {
		g.logger.Debug("sign up failed", zap.String("email", email), zap.Error(err))
		return err
	}
	g.logger.Debug("signed up", zap.String("email", email))
	return nil
}
