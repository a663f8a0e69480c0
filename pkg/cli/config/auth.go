package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// minSecretLength is the shortest accepted HMAC secret in bytes
const minSecretLength = 32

type Auth struct {
	jwtSecret    string
	issuer       string
	noAuthUser   string
	noAuthTenant string
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "jwt-secret",
			Usage:       "HMAC secret verifying HS256 bearer tokens (at least 32 bytes)",
			Category:    "Authentication",
			Destination: &x.jwtSecret,
			Sources:     cli.EnvVars("AUDITFLOW_JWT_SECRET"),
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Required \"iss\" claim of bearer tokens",
			Category:    "Authentication",
			Value:       "auditflow",
			Destination: &x.issuer,
			Sources:     cli.EnvVars("AUDITFLOW_JWT_ISSUER"),
		},
		&cli.StringFlag{
			Name:        "no-auth-user",
			Usage:       "Skip authentication and act as this user ID (development only)",
			Category:    "Authentication",
			Destination: &x.noAuthUser,
			Sources:     cli.EnvVars("AUDITFLOW_NO_AUTH_USER"),
		},
		&cli.StringFlag{
			Name:        "no-auth-tenant",
			Usage:       "Tenant of the --no-auth-user",
			Category:    "Authentication",
			Destination: &x.noAuthTenant,
			Sources:     cli.EnvVars("AUDITFLOW_NO_AUTH_TENANT"),
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("jwt-secret.len", len(x.jwtSecret)),
		slog.String("issuer", x.issuer),
		slog.String("no-auth-user", x.noAuthUser),
		slog.String("no-auth-tenant", x.noAuthTenant),
	)
}

// IsNoAuthMode reports whether requests run as a fixed user
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuthUser != ""
}

// Configure returns the no-auth use case when --no-auth-user is set and the
// JWT verifier otherwise
func (x *Auth) Configure() (usecase.AuthUseCaseInterface, error) {
	if x.IsNoAuthMode() {
		if x.noAuthTenant == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "no-auth-tenant is required with no-auth-user")
		}
		return usecase.NewNoAuthnUseCase(model.UserID(x.noAuthUser), x.noAuthTenant), nil
	}

	uc, err := x.JWT()
	if err != nil {
		return nil, err
	}
	return uc, nil
}

// JWT returns the token verifier and issuer
func (x *Auth) JWT() (*usecase.AuthUseCase, error) {
	if len(x.jwtSecret) < minSecretLength {
		return nil, goerr.Wrap(ErrInvalidConfig, "jwt-secret must be at least 32 bytes",
			goerr.V("length", len(x.jwtSecret)))
	}

	var opts []usecase.AuthOption
	if x.issuer != "" {
		opts = append(opts, usecase.WithIssuer(x.issuer))
	}
	return usecase.NewAuthUseCase([]byte(x.jwtSecret), opts...), nil
}
