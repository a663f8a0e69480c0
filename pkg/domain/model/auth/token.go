package auth

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
)

// Token is the authenticated actor of a request
type Token struct {
	Sub      model.UserID
	TenantID string
	Name     string
}

type ctxTokenKey struct{}

// ErrNoToken is returned when the context carries no authenticated actor
var ErrNoToken = goerr.New("no auth token in context")

// ContextWithToken returns a new context carrying the token
func ContextWithToken(ctx context.Context, token *Token) context.Context {
	return context.WithValue(ctx, ctxTokenKey{}, token)
}

// TokenFromContext extracts the token stored by ContextWithToken
func TokenFromContext(ctx context.Context) (*Token, error) {
	token, ok := ctx.Value(ctxTokenKey{}).(*Token)
	if !ok || token == nil {
		return nil, ErrNoToken
	}
	return token, nil
}
