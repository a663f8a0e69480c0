package http

import (
	"net/http"
	"strings"

	"github.com/secmon-lab/auditflow/pkg/domain/model/auth"
	"github.com/secmon-lab/auditflow/pkg/usecase"
	"github.com/secmon-lab/auditflow/pkg/utils/logging"
)

type AuthUseCase = usecase.AuthUseCaseInterface

// authMiddleware resolves the actor from the Authorization bearer token and
// stores it in the request context
func authMiddleware(authUC AuthUseCase) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if authUC == nil {
				writeError(w, http.StatusUnauthorized, "authentication is not configured")
				return
			}

			var raw string
			if !authUC.IsNoAuthn() {
				var ok bool
				raw, ok = bearerToken(r)
				if !ok {
					writeError(w, http.StatusUnauthorized, "authentication required")
					return
				}
			}

			token, err := authUC.ValidateToken(r.Context(), raw)
			if err != nil {
				logging.From(r.Context()).Info("rejected access token", "error", err.Error())
				writeError(w, http.StatusUnauthorized, "invalid authentication token")
				return
			}

			ctx := auth.ContextWithToken(r.Context(), token)
			ctx = logging.With(ctx, logging.From(ctx).With("actor", token.Sub, "tenant_id", token.TenantID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
