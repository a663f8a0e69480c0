package usecase

import (
	"context"

	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/model/auth"
)

// NoAuthnUseCase acts as a fixed user (for development/testing)
type NoAuthnUseCase struct {
	sub      model.UserID
	tenantID string
}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

func NewNoAuthnUseCase(sub model.UserID, tenantID string) *NoAuthnUseCase {
	return &NoAuthnUseCase{sub: sub, tenantID: tenantID}
}

// ValidateToken ignores the token and returns the configured user
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, rawToken string) (*auth.Token, error) {
	return &auth.Token{Sub: uc.sub, TenantID: uc.tenantID}, nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
