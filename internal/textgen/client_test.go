package textgen_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"jobpilot/internal/textgen"

	"go.uber.org/zap"
)

func completionServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestComplete_ReturnsContent(t *testing.T) {
	srv := completionServer(t, http.StatusOK,
		`{"choices":[{"message":{"role":"assistant","content":"Dear Hiring Manager, ..."}}]}`)
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())

	got, err := client.Complete(context.Background(), "write a letter", 400)
	if err != nil {
		t.Fatalf("Complete returned unexpected error: %v", err)
	}
	if got != "Dear Hiring Manager, ..." {
		t.Errorf("Complete = %q", got)
	}
}

func TestComplete_SendsPromptAndModel(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())
	if _, err := client.Complete(context.Background(), "write a letter", 400); err != nil {
		t.Fatalf("Complete returned unexpected error: %v", err)
	}

	if gotBody["model"] != "gpt-4o-mini" {
		t.Errorf("model = %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(400) {
		t.Errorf("max_tokens = %v", gotBody["max_tokens"])
	}
}

func TestComplete_NoAPIKey(t *testing.T) {
	client := textgen.NewClient("http://unused", "", "gpt-4o-mini", zap.NewNop())

	_, err := client.Complete(context.Background(), "prompt", 100)
	if !errors.Is(err, textgen.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestComplete_Unauthorized(t *testing.T) {
	srv := completionServer(t, http.StatusUnauthorized, `{"error":"bad key"}`)
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())

	_, err := client.Complete(context.Background(), "prompt", 100)
	if !errors.Is(err, textgen.ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestComplete_ServerError(t *testing.T) {
	srv := completionServer(t, http.StatusInternalServerError, "boom")
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())

	_, err := client.Complete(context.Background(), "prompt", 100)
	if !errors.Is(err, textgen.ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestComplete_EmptyChoices(t *testing.T) {
	srv := completionServer(t, http.StatusOK, `{"choices":[]}`)
	defer srv.Close()

	client := textgen.NewClient(srv.URL, "test-key", "gpt-4o-mini", zap.NewNop())

	_, err := client.Complete(context.Background(), "prompt", 100)
	if !errors.Is(err, textgen.ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}

func TestComplete_Unreachable(t *testing.T) {
	client := textgen.NewClient("http://127.0.0.1:1", "test-key", "gpt-4o-mini", zap.NewNop())

	_, err := client.Complete(context.Background(), "prompt", 100)
	if !errors.Is(err, textgen.ErrServiceUnavailable) {
		t.Errorf("err = %v, want ErrServiceUnavailable", err)
	}
}
