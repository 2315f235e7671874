package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"salesdesk_backend/internal/leads/conversion"
	"salesdesk_backend/internal/leads/domain"
	"salesdesk_backend/internal/leads/scoring"
	"salesdesk_backend/internal/leads/sequencing"
	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/httpkit"
	"salesdesk_backend/platform/logger"
	"salesdesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeAssigner struct {
	worker domain.Worker
	err    error
}

func (f *fakeAssigner) AssignNext(context.Context) (domain.Worker, error) {
	return f.worker, f.err
}

type fakeSequencer struct {
	lastBase     string
	lastStrategy sequencing.Strategy
	lastDryRun   bool
}

func (f *fakeSequencer) NextIdentifier(_ context.Context, baseKey string, strategy sequencing.Strategy) (sequencing.Identifier, error) {
	f.lastBase = baseKey
	f.lastStrategy = strategy
	return sequencing.Identifier{BaseKey: baseKey, Sequence: 2, Title: sequencing.Format(baseKey, 2)}, nil
}

func (f *fakeSequencer) ReconcileIdentifiers(_ context.Context, strategy sequencing.Strategy, dryRun bool) (sequencing.Report, error) {
	f.lastStrategy = strategy
	f.lastDryRun = dryRun
	return sequencing.Report{Strategy: strategy, DryRun: dryRun}, nil
}

type fakeConverter struct {
	actor uuid.UUID
	err   error
}

func (f *fakeConverter) ConvertLead(_ context.Context, leadID, actingUserID uuid.UUID) (conversion.Result, error) {
	f.actor = actingUserID
	if f.err != nil {
		return conversion.Result{}, f.err
	}
	return conversion.Result{Deal: domain.Deal{ID: uuid.New(), Title: "Acme-W001", BaseKey: "Acme", SequenceNumber: 1}}, nil
}

func (f *fakeConverter) IntakeLead(_ context.Context, req conversion.IntakeRequest) (conversion.IntakeResult, error) {
	return conversion.IntakeResult{Lead: domain.Lead{ID: uuid.New(), Name: req.Name, Status: domain.LeadStatusNew}}, nil
}

type stubProber struct{}

func (stubProber) Probe(context.Context, string) scoring.Reachability { return scoring.Reachability{} }

func newTestRouter(h *Handler, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/pipeline", func(c *gin.Context) {
		if userID != nil {
			c.Set(httpkit.ContextUserIDKey, *userID)
			c.Set(httpkit.ContextRolesKey, []string{"admin"})
		}
		c.Next()
	})
	h.RegisterRoutes(group)
	h.RegisterAdminRoutes(group)
	return r
}

func doJSON(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func newHandler(a Assigner, s Sequencer, c Converter) *Handler {
	engine := scoring.NewEngine(scoring.DefaultTables(), stubProber{}, logger.Nop())
	return New(a, engine, s, c, sequencing.StrategyTitle, validator.New())
}

func TestScoreLeadEndpoint(t *testing.T) {
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodPost, "/pipeline/scores/lead", map[string]any{
		"oldStatus":    "New",
		"newStatus":    "Qualified",
		"currentScore": 30,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got scoring.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Score != 60 || got.Grade != domain.GradeB || got.IsHot {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestScoreLeadDegradesOddInputs(t *testing.T) {
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, &fakeConverter{}), nil)

	cases := []struct {
		body map[string]any
		want int
	}{
		{map[string]any{"currentScore": 10}, 10},
		{map[string]any{"currentScore": 150, "oldStatus": "New", "newStatus": "Contacted"}, 100},
		{map[string]any{"currentScore": -40, "newStatus": "Archived"}, 10},
	}
	for _, tc := range cases {
		rec := doJSON(r, http.MethodPost, "/pipeline/scores/lead", tc.body)
		if rec.Code != http.StatusOK {
			t.Fatalf("%v: expected 200, got %d: %s", tc.body, rec.Code, rec.Body.String())
		}
		var got scoring.Result
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.Score != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.body, tc.want, got.Score)
		}
	}
}

func TestScoreCampaignDegradesOddInputs(t *testing.T) {
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, &fakeConverter{}), nil)
	engine := scoring.NewEngine(scoring.DefaultTables(), stubProber{}, logger.Nop())
	want := engine.ScoreCampaign(scoring.CampaignInputs{})

	rec := doJSON(r, http.MethodPost, "/pipeline/scores/campaign", map[string]any{
		"priority":      "urgent",
		"budget":        -5,
		"expectedSpend": -1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got scoring.CampaignResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != want.Total || got.Grade != want.Grade {
		t.Fatalf("expected the lowest branch %d/%s, got %d/%s", want.Total, want.Grade, got.Total, got.Grade)
	}
}

func TestScoreLeadRejectsOversizedStatus(t *testing.T) {
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodPost, "/pipeline/scores/lead", map[string]any{"newStatus": strings.Repeat("x", 51)})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"details"`) {
		t.Fatalf("expected validation details, got %s", rec.Body.String())
	}
}

func TestAssignNextMapsEmptyPoolToConflict(t *testing.T) {
	assigner := &fakeAssigner{err: apperr.Wrap(apperr.KindConflict, "no workers available", domain.ErrNoWorkersAvailable)}
	r := newTestRouter(newHandler(assigner, &fakeSequencer{}, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodPost, "/pipeline/assignments/next", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestNextIdentifierUsesDefaultStrategy(t *testing.T) {
	seq := &fakeSequencer{}
	r := newTestRouter(newHandler(&fakeAssigner{}, seq, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodGet, "/pipeline/identifiers/next?baseKey=Acme", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if seq.lastBase != "Acme" || seq.lastStrategy != sequencing.StrategyTitle {
		t.Fatalf("unexpected call base=%q strategy=%q", seq.lastBase, seq.lastStrategy)
	}

	rec = doJSON(r, http.MethodGet, "/pipeline/identifiers/next", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without baseKey, got %d", rec.Code)
	}
}

func TestReconcilePassesDryRun(t *testing.T) {
	seq := &fakeSequencer{}
	r := newTestRouter(newHandler(&fakeAssigner{}, seq, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodPost, "/pipeline/identifiers/reconcile", map[string]any{"strategy": "email", "dryRun": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !seq.lastDryRun || seq.lastStrategy != sequencing.StrategyEmail {
		t.Fatalf("unexpected reconcile call dryRun=%v strategy=%q", seq.lastDryRun, seq.lastStrategy)
	}
}

func TestConvertLeadUsesAuthenticatedActor(t *testing.T) {
	actor := uuid.New()
	conv := &fakeConverter{}
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, conv), &actor)

	rec := doJSON(r, http.MethodPost, fmt.Sprintf("/pipeline/leads/%s/convert", uuid.New()), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if conv.actor != actor {
		t.Fatalf("expected actor %s, got %s", actor, conv.actor)
	}
}

func TestConvertLeadRequiresIdentity(t *testing.T) {
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodPost, fmt.Sprintf("/pipeline/leads/%s/convert", uuid.New()), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestConvertLeadNotFound(t *testing.T) {
	actor := uuid.New()
	conv := &fakeConverter{err: apperr.NotFound("lead not found")}
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, conv), &actor)

	rec := doJSON(r, http.MethodPost, fmt.Sprintf("/pipeline/leads/%s/convert", uuid.New()), nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestConvertLeadRejectsMalformedID(t *testing.T) {
	actor := uuid.New()
	conv := &fakeConverter{}
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, conv), &actor)

	rec := doJSON(r, http.MethodPost, "/pipeline/leads/not-a-uuid/convert", nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid lead id") {
		t.Fatalf("expected 400 invalid lead id, got %d: %s", rec.Code, rec.Body.String())
	}
	if conv.actor != uuid.Nil {
		t.Fatal("converter must not be called")
	}
}

func TestIntakeLeadValidatesEmail(t *testing.T) {
	r := newTestRouter(newHandler(&fakeAssigner{}, &fakeSequencer{}, &fakeConverter{}), nil)

	rec := doJSON(r, http.MethodPost, "/pipeline/leads", map[string]any{"name": "Jane", "email": "not-an-email"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	rec = doJSON(r, http.MethodPost, "/pipeline/leads", map[string]any{"name": "Jane", "email": "jane@acme.io"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}
