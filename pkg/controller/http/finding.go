package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

type createFindingRequest struct {
	AuditID     string `json:"audit_id"`
	Department  string `json:"department"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type categorizeRequest struct {
	Category string `json:"category"`
}

func (s *Server) createFinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req createFindingRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	finding, err := s.uc.Finding.CreateFinding(ctx, token.TenantID, usecase.FindingInput{
		AuditID:     req.AuditID,
		Department:  req.Department,
		Title:       req.Title,
		Description: req.Description,
	}, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusCreated, toFindingResponse(finding))
}

func (s *Server) listFindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	findings, err := s.uc.Finding.ListFindings(ctx, token.TenantID)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	resp := make([]*findingResponse, len(findings))
	for i, f := range findings {
		resp[i] = toFindingResponse(f)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"findings": resp})
}

func (s *Server) getFinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	finding, err := s.uc.Finding.GetFinding(ctx, token.TenantID, model.FindingID(chi.URLParam(r, "findingID")))
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toFindingResponse(finding))
}

func (s *Server) categorizeFinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req categorizeRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	id := model.FindingID(chi.URLParam(r, "findingID"))
	result, err := s.uc.Finding.CategorizeFinding(ctx, token.TenantID, id, types.FindingCategory(req.Category), token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, toCategorizeResponse(result))
}
