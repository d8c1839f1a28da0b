package apply

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jobpilot/internal/models"

	"go.uber.org/zap"
)

// Gateway calls the external browser-automation service that performs the
// actual form filling and file upload for a job board.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewGateway(baseURL string, timeout time.Duration, logger *zap.Logger) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

type submitRequest struct {
	JobURL      string `json:"job_url"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	LinkedInURL string `json:"linkedin_url,omitempty"`
	ResumeURL   string `json:"resume_url"`
	CoverLetter string `json:"cover_letter"`
}

type submitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// submit posts the application payload to the given gateway path and
// returns an error describing any failure.
func (g *Gateway) submit(ctx context.Context, path string, posting *models.JobPosting, app *Application) error {
	payload, err := json.Marshal(submitRequest{
		JobURL:      posting.URL,
		JobTitle:    posting.Title,
		Company:     posting.Company,
		Email:       app.Email,
		Phone:       app.Phone,
		LinkedInURL: app.LinkedInURL,
		ResumeURL:   app.ResumeURL,
		CoverLetter: app.CoverLetter,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		g.logger.Error("apply gateway error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	var parsed submitResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}

	if !parsed.Success {
		if parsed.Error == "" {
			parsed.Error = "submission rejected"
		}
		return fmt.Errorf("%s", parsed.Error)
	}

	return nil
}
