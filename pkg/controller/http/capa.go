package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/auditflow/pkg/domain/interfaces"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/domain/types"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

type requirementRequest struct {
	Area        string `json:"area"`
	Requirement string `json:"requirement"`
	Category    string `json:"category"`
}

type proposedActionRequest struct {
	RootCause            string `json:"root_cause"`
	Correction           string `json:"correction"`
	Action               string `json:"action"`
	TargetCompletionDate string `json:"target_completion_date"`
	Auditee              string `json:"auditee"`
}

type reviewRequest struct {
	Response string `json:"response"`
	Comment  string `json:"comment"`
	Commit   bool   `json:"commit"`
}

type followUpRequest struct {
	Action string `json:"action"`
}

type effectivenessRequest struct {
	Response string `json:"response"`
	Details  string `json:"details"`
}

type notifyMRRequest struct {
	Comment string `json:"comment"`
}

func capaIDParam(r *http.Request) model.CAPAID {
	return model.CAPAID(chi.URLParam(r, "capaID"))
}

// parseDate accepts a calendar date or an RFC 3339 timestamp. Empty input
// yields the zero time and is rejected by input validation.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, goerr.Wrap(usecase.ErrValidation, "invalid date", goerr.V("value", s))
	}
	return t, nil
}

func (s *Server) listCAPAs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var opts []interfaces.ListCAPAOption
	if v := r.URL.Query().Get("kind"); v != "" {
		kind, err := types.ParseCAPAKind(v)
		if err != nil {
			handleError(ctx, w, goerr.Wrap(usecase.ErrValidation, err.Error()))
			return
		}
		opts = append(opts, interfaces.WithKind(kind))
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status, err := types.ParseCAPAStatus(v)
		if err != nil {
			handleError(ctx, w, goerr.Wrap(usecase.ErrValidation, err.Error()))
			return
		}
		opts = append(opts, interfaces.WithStatus(status))
	}

	capas, err := s.uc.CAPA.ListCAPAs(ctx, token.TenantID, opts...)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	resp := make([]*capaResponse, len(capas))
	for i, c := range capas {
		resp[i] = toCAPAResponse(c)
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"capas": resp})
}

func (s *Server) getCAPA(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	capa, err := s.uc.CAPA.GetCAPA(ctx, token.TenantID, capaIDParam(r))
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, toCAPAResponse(capa))
}

func (s *Server) commitRequirement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req requirementRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	result, err := s.uc.CAPA.CommitRequirement(ctx, token.TenantID, capaIDParam(r), model.RequirementInput{
		Area:        req.Area,
		Requirement: req.Requirement,
		Category:    req.Category,
	}, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTransition(w, r, result.CAPA, result.Dispatch)
}

func (s *Server) submitProposedAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req proposedActionRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}
	target, err := parseDate(req.TargetCompletionDate)
	if err != nil {
		handleError(ctx, w, err)
		return
	}

	result, err := s.uc.CAPA.SubmitProposedAction(ctx, token.TenantID, capaIDParam(r), model.ProposedActionInput{
		RootCause:            req.RootCause,
		Correction:           req.Correction,
		Action:               req.Action,
		TargetCompletionDate: target,
		Auditee:              req.Auditee,
	}, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTransition(w, r, result.CAPA, result.Dispatch)
}

func (s *Server) submitAppropriatenessReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	result, err := s.uc.CAPA.SubmitAppropriatenessReview(ctx, token.TenantID, capaIDParam(r), model.ReviewInput{
		Response: types.ReviewResponse(req.Response),
		Comment:  req.Comment,
		Commit:   req.Commit,
	}, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTransition(w, r, result.CAPA, result.Dispatch)
}

func (s *Server) submitFollowUpAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req followUpRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	capa, err := s.uc.CAPA.SubmitFollowUpAction(ctx, token.TenantID, capaIDParam(r), types.FollowUpAction(req.Action), token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTransition(w, r, capa, nil)
}

func (s *Server) submitActionEffectiveness(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req effectivenessRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	capa, err := s.uc.CAPA.SubmitActionEffectiveness(ctx, token.TenantID, capaIDParam(r), model.EffectivenessInput{
		Response: types.ReviewResponse(req.Response),
		Details:  req.Details,
	}, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTransition(w, r, capa, nil)
}

func (s *Server) notifyManagementRepresentative(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := tokenFrom(ctx)

	var req notifyMRRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(ctx, w, err)
		return
	}

	summary, err := s.uc.CAPA.NotifyManagementRepresentative(ctx, token.TenantID, capaIDParam(r), req.Comment, token.Sub)
	if err != nil {
		handleError(ctx, w, err)
		return
	}
	writeTransition(w, r, nil, summary)
}

// writeTransition answers 200 when every notification went out and 207
// Multi-Status when some or all recipients could not be notified
func writeTransition(w http.ResponseWriter, r *http.Request, capa *model.CAPA, summary *model.DispatchSummary) {
	status, hint := summary.Verdict()

	code := http.StatusOK
	if status == types.ResponseStatusMultiStatus {
		code = http.StatusMultiStatus
	}

	writeJSON(r.Context(), w, code, transitionResponse{
		Status:   status.String(),
		CAPA:     toCAPAResponse(capa),
		Dispatch: toDispatchResponse(summary),
		Hint:     hint,
	})
}
