package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	server "github.com/secmon-lab/auditflow/pkg/controller/http"
	"github.com/secmon-lab/auditflow/pkg/domain/model"
	"github.com/secmon-lab/auditflow/pkg/repository/memory"
	"github.com/secmon-lab/auditflow/pkg/service/metrics"
	"github.com/secmon-lab/auditflow/pkg/usecase"
)

const (
	tenantID  = "acme"
	auditorID = model.UserID("auditor-1")
	headID    = model.UserID("head-1")
)

type env struct {
	uc  *usecase.UseCases
	reg *prometheus.Registry
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()

	repo := memory.New()
	dir := repo.Directory()
	for _, u := range []*model.User{
		{ID: auditorID, Name: "Aiko Auditor", Active: true, Roles: []string{usecase.DefaultAuditorRole}},
		{ID: headID, Name: "Hana Head", Active: true},
		{ID: "mr-1", Name: "Mika MR", Active: true, Roles: []string{usecase.DefaultMRRole}},
	} {
		gt.NoError(t, dir.PutUser(ctx, tenantID, u)).Required()
	}
	gt.NoError(t, dir.PutDepartment(ctx, tenantID, &model.Department{Name: "Production", HeadID: headID})).Required()
	gt.NoError(t, dir.PutDepartment(ctx, tenantID, &model.Department{Name: "Logistics"})).Required()

	reg := prometheus.NewRegistry()
	return &env{
		uc:  usecase.New(repo, usecase.WithMetrics(metrics.New(reg))),
		reg: reg,
	}
}

// serverAs returns a server that treats every request as coming from actor
func (e *env) serverAs(actor model.UserID) *server.Server {
	return server.New(e.uc,
		server.WithAuth(usecase.NewNoAuthnUseCase(actor, tenantID)),
		server.WithMetricsHandler(promhttp.HandlerFor(e.reg, promhttp.HandlerOpts{})),
	)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

type findingBody struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	CAPAID   string `json:"capa_id"`
}

type capaBody struct {
	ID           string `json:"id"`
	Kind         string `json:"kind"`
	Status       string `json:"status"`
	AssignedToID string `json:"assigned_to_id"`
	MRNotified   bool   `json:"mr_notified"`
}

type transitionBody struct {
	Status   string    `json:"status"`
	CAPA     *capaBody `json:"capa"`
	Hint     string    `json:"hint"`
	Dispatch *struct {
		Total          int `json:"total"`
		PartialSuccess int `json:"partial_success"`
		Failed         int `json:"failed"`
	} `json:"dispatch"`
}

// createCase records and categorizes a finding through the API
func createCase(t *testing.T, h http.Handler, department string) string {
	t.Helper()

	w := do(t, h, http.MethodPost, "/api/findings", map[string]string{
		"department": department,
		"title":      "Calibration records missing",
	})
	gt.Number(t, w.Code).Equal(http.StatusCreated).Required()
	finding := decode[findingBody](t, w)

	w = do(t, h, http.MethodPost, "/api/findings/"+finding.ID+"/categorize", map[string]string{
		"category": "NON_CONFORMITY",
	})
	gt.Number(t, w.Code).Equal(http.StatusOK).Required()
	resp := decode[struct {
		Finding findingBody `json:"finding"`
		CAPA    *capaBody   `json:"capa"`
	}](t, w)
	gt.Value(t, resp.CAPA).NotNil().Required()
	gt.S(t, resp.Finding.CAPAID).Equal(resp.CAPA.ID)
	gt.S(t, resp.CAPA.Kind).Equal("CORRECTIVE")
	return resp.CAPA.ID
}

func TestServer_Workflow(t *testing.T) {
	e := newEnv(t)
	auditor := e.serverAs(auditorID)
	head := e.serverAs(headID)

	capaID := createCase(t, auditor, "Production")

	w := do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/requirement", map[string]string{
		"area":        "Maintenance",
		"requirement": "ISO 9001 7.1.5",
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)
	committed := decode[transitionBody](t, w)
	gt.S(t, committed.Status).Equal("SUCCESS")
	gt.S(t, committed.CAPA.Status).Equal("IN_PROGRESS")
	gt.S(t, committed.CAPA.AssignedToID).Equal(string(headID))
	gt.Number(t, committed.Dispatch.PartialSuccess).Equal(1)

	w = do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/proposed-action", map[string]string{
		"root_cause":             "No owner",
		"correction":             "Calibrate",
		"action":                 "Schedule",
		"target_completion_date": "2026-11-30",
		"auditee":                "Hana Head",
	})
	gt.Number(t, w.Code).Equal(http.StatusForbidden)

	w = do(t, head, http.MethodPost, "/api/capas/"+capaID+"/proposed-action", map[string]string{
		"root_cause":             "No owner",
		"correction":             "Calibrate",
		"action":                 "Schedule",
		"target_completion_date": "2026-11-30",
		"auditee":                "Hana Head",
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)

	w = do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/appropriateness-review", map[string]any{
		"response": "NO",
	})
	gt.Number(t, w.Code).Equal(http.StatusBadRequest)

	w = do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/appropriateness-review", map[string]any{
		"response": "YES",
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)
	reviewed := decode[transitionBody](t, w)
	gt.Value(t, reviewed.Dispatch).Nil()

	w = do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/follow-up", map[string]string{
		"action": "ACTION_FULLY_COMPLETED",
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.S(t, decode[transitionBody](t, w).CAPA.Status).Equal("COMPLETED")

	w = do(t, head, http.MethodPost, "/api/capas/"+capaID+"/effectiveness", map[string]string{
		"response": "YES",
		"details":  "Fixed it myself",
	})
	gt.Number(t, w.Code).Equal(http.StatusForbidden)

	w = do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/effectiveness", map[string]string{
		"response": "YES",
		"details":  "Verified on site",
	})
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.S(t, decode[transitionBody](t, w).CAPA.Status).Equal("VERIFIED")

	w = do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/notify-mr", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	escalated := decode[transitionBody](t, w)
	gt.Number(t, escalated.Dispatch.Total).Equal(1)

	w = do(t, auditor, http.MethodGet, "/api/capas/"+capaID, nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.Bool(t, decode[capaBody](t, w).MRNotified).True()

	w = do(t, head, http.MethodGet, "/api/notifications", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	inbox := decode[struct {
		Notifications []struct {
			ID   string `json:"id"`
			Type string `json:"type"`
			Read bool   `json:"read"`
		} `json:"notifications"`
	}](t, w)
	gt.A(t, inbox.Notifications).Length(1).Required()
	gt.S(t, inbox.Notifications[0].Type).Equal("CAPA_REQUIREMENT_COMMITTED")

	notificationID := inbox.Notifications[0].ID
	w = do(t, auditor, http.MethodPost, "/api/notifications/"+notificationID+"/read", nil)
	gt.Number(t, w.Code).Equal(http.StatusForbidden)

	w = do(t, head, http.MethodPost, "/api/notifications/"+notificationID+"/read", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.Bool(t, decode[struct {
		Read bool `json:"read"`
	}](t, w).Read).True()
}

func TestServer_MultiStatus(t *testing.T) {
	e := newEnv(t)
	auditor := e.serverAs(auditorID)

	capaID := createCase(t, auditor, "Logistics")

	w := do(t, auditor, http.MethodPost, "/api/capas/"+capaID+"/requirement", map[string]string{
		"area":        "Warehouse",
		"requirement": "ISO 9001 8.5.4",
	})
	gt.Number(t, w.Code).Equal(http.StatusMultiStatus)

	body := decode[transitionBody](t, w)
	gt.S(t, body.Status).Equal("MULTI_STATUS")
	gt.S(t, body.Hint).Equal(model.HintCheckDepartmentConfiguration)
	gt.S(t, body.CAPA.Status).Equal("IN_PROGRESS")
	gt.Number(t, body.Dispatch.Failed).Equal(1)
}

func TestServer_Errors(t *testing.T) {
	e := newEnv(t)
	auditor := e.serverAs(auditorID)

	t.Run("unknown case", func(t *testing.T) {
		w := do(t, auditor, http.MethodGet, "/api/capas/capa-missing", nil)
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/findings", strings.NewReader("{"))
		w := httptest.NewRecorder()
		auditor.ServeHTTP(w, req)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid category", func(t *testing.T) {
		w := do(t, auditor, http.MethodPost, "/api/findings", map[string]string{
			"department": "Production",
			"title":      "Spill kit missing",
		})
		finding := decode[findingBody](t, w)

		w = do(t, auditor, http.MethodPost, "/api/findings/"+finding.ID+"/categorize", map[string]string{
			"category": "MINOR",
		})
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("invalid list filter", func(t *testing.T) {
		w := do(t, auditor, http.MethodGet, "/api/capas?status=CLOSED", nil)
		gt.Number(t, w.Code).Equal(http.StatusBadRequest)
	})

	t.Run("unknown actor", func(t *testing.T) {
		ghost := e.serverAs("ghost")
		w := do(t, ghost, http.MethodPost, "/api/findings", map[string]string{
			"department": "Production",
			"title":      "Spill kit missing",
		})
		gt.Number(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestServer_ListFilters(t *testing.T) {
	e := newEnv(t)
	auditor := e.serverAs(auditorID)
	createCase(t, auditor, "Production")

	w := do(t, auditor, http.MethodGet, "/api/capas?kind=CORRECTIVE&status=OPEN", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	list := decode[struct {
		CAPAs []capaBody `json:"capas"`
	}](t, w)
	gt.A(t, list.CAPAs).Length(1)

	w = do(t, auditor, http.MethodGet, "/api/capas?kind=PREVENTIVE", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.A(t, decode[struct {
		CAPAs []capaBody `json:"capas"`
	}](t, w).CAPAs).Length(0)

	w = do(t, auditor, http.MethodGet, "/api/findings", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.A(t, decode[struct {
		Findings []findingBody `json:"findings"`
	}](t, w).Findings).Length(1)
}

func TestServer_JWTAuth(t *testing.T) {
	e := newEnv(t)
	authUC := usecase.NewAuthUseCase([]byte("0123456789abcdef0123456789abcdef"))
	srv := server.New(e.uc, server.WithAuth(authUC))

	t.Run("missing token", func(t *testing.T) {
		w := do(t, srv, http.MethodGet, "/api/capas", nil)
		gt.Number(t, w.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/capas", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Number(t, w.Code).Equal(http.StatusUnauthorized)
	})

	t.Run("valid token", func(t *testing.T) {
		raw, err := authUC.IssueToken(auditorID, tenantID, "Aiko Auditor", time.Hour)
		gt.NoError(t, err).Required()

		req := httptest.NewRequest(http.MethodGet, "/api/capas", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		gt.Number(t, w.Code).Equal(http.StatusOK)
	})

	t.Run("no auth configured rejects", func(t *testing.T) {
		bare := server.New(e.uc)
		w := do(t, bare, http.MethodGet, "/api/capas", nil)
		gt.Number(t, w.Code).Equal(http.StatusUnauthorized)
	})
}

func TestServer_HealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	auditor := e.serverAs(auditorID)
	createCase(t, auditor, "Production")

	w := do(t, auditor, http.MethodGet, "/health", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)

	w = do(t, auditor, http.MethodGet, "/metrics", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.S(t, w.Body.String()).Contains("auditflow_capa_created_total")

	degraded := server.New(e.uc, server.WithHealthCheck("redis", func(ctx context.Context) error {
		return goerr.New("connection refused")
	}))
	w = do(t, degraded, http.MethodGet, "/health", nil)
	gt.Number(t, w.Code).Equal(http.StatusServiceUnavailable)
	gt.S(t, w.Body.String()).Contains("connection refused")
}

type fakeStream struct {
	tenantID string
	userID   model.UserID
	payloads [][]byte
}

func (s *fakeStream) Listen(ctx context.Context, tenantID string, userID model.UserID) (<-chan []byte, error) {
	s.tenantID = tenantID
	s.userID = userID

	ch := make(chan []byte, len(s.payloads))
	for _, p := range s.payloads {
		ch <- p
	}
	close(ch)
	return ch, nil
}

func TestServer_NotificationStream(t *testing.T) {
	e := newEnv(t)
	stream := &fakeStream{payloads: [][]byte{[]byte(`{"id":"n-1"}`), []byte(`{"id":"n-2"}`)}}
	srv := server.New(e.uc,
		server.WithAuth(usecase.NewNoAuthnUseCase(headID, tenantID)),
		server.WithNotificationStream(stream),
	)

	w := do(t, srv, http.MethodGet, "/api/notifications/stream", nil)
	gt.Number(t, w.Code).Equal(http.StatusOK)
	gt.S(t, w.Header().Get("Content-Type")).Equal("text/event-stream")
	gt.S(t, w.Body.String()).Contains("event: notification\ndata: {\"id\":\"n-1\"}\n\n")
	gt.S(t, w.Body.String()).Contains("data: {\"id\":\"n-2\"}")
	gt.S(t, stream.tenantID).Equal(tenantID)
	gt.Value(t, stream.userID).Equal(headID)

	// without a stream the route is not mounted
	w = do(t, e.serverAs(headID), http.MethodGet, "/api/notifications/stream", nil)
	gt.Number(t, w.Code).NotEqual(http.StatusOK)
}
