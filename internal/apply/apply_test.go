package apply

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jobpilot/internal/models"

	"go.uber.org/zap"
)

type recordingHandler struct {
	name    string
	calls   int
	success bool
}

func (h *recordingHandler) Submit(_ context.Context, posting *models.JobPosting, _ *Application) models.ApplicationResult {
	h.calls++
	return models.ApplicationResult{
		Posting:   posting.Key(),
		Success:   h.success,
		AppliedAt: time.Now(),
	}
}

func testPosting(source string) *models.JobPosting {
	return &models.JobPosting{
		ExternalID: "42",
		Title:      "Backend Engineer",
		Company:    "Acme Corp",
		Source:     source,
		URL:        "https://jobs.example.com/42",
	}
}

func testApplication() *Application {
	return &Application{
		UserID:      7,
		Email:       "dana@example.com",
		ResumeURL:   "https://cdn.example.com/resume.pdf",
		CoverLetter: "Dear Hiring Manager,",
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	linkedin := &recordingHandler{name: "linkedin", success: true}
	generic := &recordingHandler{name: "generic", success: true}

	registry := NewRegistry(generic)
	registry.Register("linkedin", linkedin)

	if got := registry.HandlerFor("linkedin"); got != linkedin {
		t.Error("HandlerFor(linkedin) did not return the registered handler")
	}
	if got := registry.HandlerFor("LinkedIn"); got != linkedin {
		t.Error("HandlerFor should match source names case-insensitively")
	}
	if got := registry.HandlerFor("obscureboard"); got != generic {
		t.Error("HandlerFor for an unregistered source should return the generic handler")
	}
}

func TestSubmitter_RoutesBySource(t *testing.T) {
	linkedin := &recordingHandler{name: "linkedin", success: true}
	generic := &recordingHandler{name: "generic", success: true}

	registry := NewRegistry(generic)
	registry.Register("linkedin", linkedin)

	submitter := NewSubmitter(registry, time.Second, 2*time.Second, zap.NewNop())

	result := submitter.Submit(context.Background(), testPosting("linkedin"), testApplication())
	if !result.Success || linkedin.calls != 1 {
		t.Errorf("linkedin posting not routed to its handler: result=%+v calls=%d", result, linkedin.calls)
	}

	submitter.Submit(context.Background(), testPosting("weworkremotely"), testApplication())
	if generic.calls != 1 {
		t.Errorf("unknown source not routed to the generic handler, calls=%d", generic.calls)
	}
}

func TestSubmitter_PaceWithinBounds(t *testing.T) {
	submitter := NewSubmitter(NewRegistry(&recordingHandler{}), 5*time.Second, 10*time.Second, zap.NewNop())

	var slept time.Duration
	submitter.sleep = func(_ context.Context, d time.Duration) { slept = d }
	submitter.randN = func(n int64) int64 { return n - 1 }

	submitter.Pace(context.Background())
	if slept < 5*time.Second || slept >= 10*time.Second {
		t.Errorf("pace delay %v outside [5s, 10s)", slept)
	}

	submitter.randN = func(int64) int64 { return 0 }
	submitter.Pace(context.Background())
	if slept != 5*time.Second {
		t.Errorf("minimum pace delay = %v, want 5s", slept)
	}
}

func TestSubmitter_PaceZeroSpread(t *testing.T) {
	submitter := NewSubmitter(NewRegistry(&recordingHandler{}), 5*time.Second, 5*time.Second, zap.NewNop())

	var slept time.Duration
	submitter.sleep = func(_ context.Context, d time.Duration) { slept = d }
	submitter.randN = func(n int64) int64 {
		t.Fatal("randN must not be called when min equals max")
		return 0
	}

	submitter.Pace(context.Background())
	if slept != 5*time.Second {
		t.Errorf("pace delay = %v, want exactly 5s", slept)
	}
}

func TestGatewayHandler_Success(t *testing.T) {
	var gotPath string
	var gotReq submitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(submitResponse{Success: true})
	}))
	defer srv.Close()

	gateway := NewGateway(srv.URL, 5*time.Second, zap.NewNop())
	handler := NewLinkedInHandler(gateway, zap.NewNop())

	result := handler.Submit(context.Background(), testPosting("linkedin"), testApplication())
	if !result.Success {
		t.Fatalf("submission failed: %s", result.Reason)
	}
	if gotPath != "/apply/linkedin" {
		t.Errorf("gateway path = %q, want /apply/linkedin", gotPath)
	}
	if gotReq.JobURL != "https://jobs.example.com/42" || gotReq.CoverLetter == "" {
		t.Errorf("unexpected payload: %+v", gotReq)
	}
	if result.Posting != (models.PostingKey{Source: "linkedin", ExternalID: "42"}) {
		t.Errorf("result posting key = %v", result.Posting)
	}
}

func TestGatewayHandler_RejectedSubmission(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(submitResponse{Success: false, Error: "captcha challenge"})
	}))
	defer srv.Close()

	handler := NewGenericHandler(NewGateway(srv.URL, 5*time.Second, zap.NewNop()), zap.NewNop())

	result := handler.Submit(context.Background(), testPosting("weworkremotely"), testApplication())
	if result.Success {
		t.Fatal("rejected submission reported as success")
	}
	if result.Reason != "captcha challenge" {
		t.Errorf("Reason = %q, want the gateway error", result.Reason)
	}
}

func TestGatewayHandler_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	handler := NewIndeedHandler(NewGateway(srv.URL, 5*time.Second, zap.NewNop()), zap.NewNop())

	result := handler.Submit(context.Background(), testPosting("indeed"), testApplication())
	if result.Success {
		t.Fatal("server error reported as success")
	}
	if result.Reason == "" {
		t.Error("failed result carries no reason")
	}
}

func TestGatewayHandler_Unreachable(t *testing.T) {
	gateway := NewGateway("http://127.0.0.1:1", time.Second, zap.NewNop())
	handler := NewGlassdoorHandler(gateway, zap.NewNop())

	result := handler.Submit(context.Background(), testPosting("glassdoor"), testApplication())
	if result.Success {
		t.Fatal("unreachable gateway reported as success")
	}
}
