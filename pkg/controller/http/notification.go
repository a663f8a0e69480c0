package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(ctx, w, goerr.Wrap(usecase.ErrValidation, "limit must be a non-negative integer", goerr.V("limit", v)))
			return
		}
		limit = n
	}

	list, err := s.uc.Notification.ListNotifications(ctx, token.TenantID, token.Sub, limit)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	resp := make([]*notificationResponse, len(list))
	for i, n := range list {
		resp[i] = toNotificationResponse(n)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"notifications": resp})
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	id := model.NotificationID(chi.URLParam(r, "notificationID"))
	n, err := s.uc.Notification.MarkRead(ctx, token.TenantID, id, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toNotificationResponse(n))
}
