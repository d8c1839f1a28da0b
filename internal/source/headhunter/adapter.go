package headhunter

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobpilot/internal/models"

	"go.uber.org/zap"
)

const SourceName = "headhunter"

const searchPageSize = 50

// experienceParams maps the pipeline's experience levels to HH search ids.
var experienceParams = map[models.ExperienceLevel]string{
	models.ExperienceEntry:  "noExperience",
	models.ExperienceMid:    "between1And3",
	models.ExperienceSenior: "between3And6",
	models.ExperienceLead:   "moreThan6",
}

// Adapter turns the HH vacancies endpoint into a job source.
type Adapter struct {
	client *Client
	logger *zap.Logger
}

func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Adapter {
	return &Adapter{
		client: NewClient(baseURL, timeout, logger),
		logger: logger,
	}
}

func (a *Adapter) Name() string {
	return SourceName
}

func (a *Adapter) Search(ctx context.Context, criteria models.SearchCriteria) ([]models.JobPosting, error) {
	params := url.Values{}
	params.Set("text", criteria.JobTitle)
	params.Set("per_page", strconv.Itoa(searchPageSize))

	if criteria.Remote {
		params.Set("schedule", "remote")
	}

	if criteria.SalaryMin != nil && *criteria.SalaryMin > 0 {
		params.Set("salary", strconv.Itoa(*criteria.SalaryMin))
		params.Set("only_with_salary", "true")
	}

	if exp, ok := experienceParams[criteria.ExperienceLevel]; ok {
		params.Set("experience", exp)
	}

	data, err := a.client.get(ctx, "/vacancies", params)
	if err != nil {
		a.logger.Error("failed to search vacancies",
			zap.String("text", criteria.JobTitle),
			zap.Error(err),
		)
		return nil, fmt.Errorf("search vacancies: %w", err)
	}

	var response VacancySearchResponse
	if err := a.client.parseResponse(data, &response); err != nil {
		a.logger.Error("failed to parse search response", zap.Error(err))
		return nil, err
	}

	a.logger.Debug("vacancies found",
		zap.Int("found", response.Found),
		zap.Int("returned", len(response.Items)),
		zap.String("text", criteria.JobTitle),
	)

	postings := make([]models.JobPosting, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Archived {
			continue
		}
		postings = append(postings, convertItem(&item))
	}

	return postings, nil
}

func convertItem(item *VacancyItem) models.JobPosting {
	posting := models.JobPosting{
		ExternalID: item.ID,
		Title:      item.Name,
		Company:    item.Employer.Name,
		Location:   item.Area.Name,
		Source:     SourceName,
		URL:        item.AlternateURL,
		PostedAt:   item.PublishedAt,
	}

	if item.Schedule != nil && item.Schedule.ID == "remote" {
		posting.Remote = true
	}

	if item.Salary != nil {
		posting.SalaryMin = item.Salary.From
		posting.SalaryMax = item.Salary.To
	}

	if item.Snippet != nil {
		var parts []string
		if item.Snippet.Responsibility != nil {
			parts = append(parts, *item.Snippet.Responsibility)
		}
		if item.Snippet.Requirement != nil {
			parts = append(parts, *item.Snippet.Requirement)
			posting.Requirements = splitRequirements(*item.Snippet.Requirement)
		}
		posting.Description = strings.Join(parts, "\n")
	}

	return posting
}

// splitRequirements breaks the snippet requirement line into separate
// entries. HH separates them with periods; highlight markup is stripped.
func splitRequirements(raw string) []string {
	raw = strings.ReplaceAll(raw, "<highlighttext>", "")
	raw = strings.ReplaceAll(raw, "</highlighttext>", "")

	var requirements []string
	for _, part := range strings.Split(raw, ". ") {
		part = strings.TrimSpace(strings.TrimSuffix(part, "."))
		if part != "" {
			requirements = append(requirements, part)
		}
	}

	return requirements
}
