// Package adzuna implements the job-source capability for the Adzuna
// public API.
package adzuna

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobpilot/internal/models"
	"jobpilot/internal/source"

	"go.uber.org/zap"
)

const SourceName = "adzuna"

const (
	pageSize = 50
	country  = "us"
)

// Adapter fetches job postings from Adzuna. When credentials are missing
// the search returns no postings and no error, so the aggregation is not
// polluted with a permanent failure.
type Adapter struct {
	baseURL string
	appID   string
	appKey  string
	client  *http.Client
	logger  *zap.Logger
}

func New(baseURL, appID, appKey string, timeout time.Duration, logger *zap.Logger) *Adapter {
	return &Adapter{
		baseURL: baseURL,
		appID:   appID,
		appKey:  appKey,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (a *Adapter) Name() string {
	return SourceName
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Count   int            `json:"count"`
}

type searchResult struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Company     company  `json:"company"`
	Location    location `json:"location"`
	Category    category `json:"category"`
	SalaryMin   float64  `json:"salary_min"`
	SalaryMax   float64  `json:"salary_max"`
	RedirectURL string   `json:"redirect_url"`
	Created     string   `json:"created"`
}

type company struct {
	DisplayName string `json:"display_name"`
}

type location struct {
	DisplayName string `json:"display_name"`
}

type category struct {
	Label string `json:"label"`
}

func (a *Adapter) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.JobPosting, error) {
	if a.appID == "" || a.appKey == "" {
		a.logger.Debug("adzuna credentials not set, skipping source")
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/jobs/%s/search/1", a.baseURL, country)

	params := url.Values{}
	params.Set("app_id", a.appID)
	params.Set("app_key", a.appKey)
	params.Set("results_per_page", strconv.Itoa(pageSize))
	params.Set("what", criteria.JobTitle)
	params.Set("sort_by", "date")
	if criteria.Location != "" {
		params.Set("where", criteria.Location)
	}
	if criteria.SalaryMin != nil && *criteria.SalaryMin > 0 {
		params.Set("salary_min", strconv.Itoa(*criteria.SalaryMin))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", source.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", source.ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: adzuna", source.ErrRateLimited)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: adzuna returned %d: %s", source.ErrUnavailable, resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	a.logger.Debug("adzuna postings found",
		zap.Int("count", apiResp.Count),
		zap.Int("returned", len(apiResp.Results)),
		zap.String("what", criteria.JobTitle),
	)

	postings := make([]models.JobPosting, 0, len(apiResp.Results))
	for _, r := range apiResp.Results {
		postings = append(postings, convertResult(&r))
	}

	return postings, nil
}

func convertResult(r *searchResult) models.JobPosting {
	posting := models.JobPosting{
		ExternalID:  r.ID,
		Title:       r.Title,
		Company:     r.Company.DisplayName,
		Location:    r.Location.DisplayName,
		Description: r.Description,
		Source:      SourceName,
		URL:         r.RedirectURL,
		Remote:      strings.Contains(strings.ToLower(r.Location.DisplayName), "remote"),
	}

	if r.Category.Label != "" {
		posting.Industries = []string{r.Category.Label}
	}

	if r.SalaryMin > 0 {
		min := int(r.SalaryMin)
		posting.SalaryMin = &min
	}
	if r.SalaryMax > 0 {
		max := int(r.SalaryMax)
		posting.SalaryMax = &max
	}

	if created, err := time.Parse("2006-01-02T15:04:05Z", r.Created); err == nil {
		posting.PostedAt = created
	}

	return posting
}
