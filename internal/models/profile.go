package models

import (
	"fmt"
	"time"

	"github.com/lib/pq"
)

type ExperienceLevel string

const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
	ExperienceLead   ExperienceLevel = "lead"
)

func ParseExperienceLevel(s string) (ExperienceLevel, error) {
	lvl := ExperienceLevel(s)
	switch lvl {
	case ExperienceEntry, ExperienceMid, ExperienceSenior, ExperienceLead:
		return lvl, nil
	}
	return "", fmt.Errorf("unknown experience level %q", s)
}

// CandidateProfile is the stored profile of one user. The pipeline only
// reads it; ownership stays with the profile surface.
type CandidateProfile struct {
	UserID             int64          `db:"user_id"`
	FullName           string         `db:"full_name"`
	Email              string         `db:"email"`
	Phone              *string        `db:"phone"`
	LinkedInURL        *string        `db:"linkedin_url"`
	ResumeURL          string         `db:"resume_url"`
	Skills             pq.StringArray `db:"skills"`
	ExperienceYears    int            `db:"experience_years"`
	Industries         pq.StringArray `db:"industries"`
	ExperienceSummary  string         `db:"experience_summary"`
	SubscriptionTier   string         `db:"subscription_tier"`
	SubscriptionActive bool           `db:"subscription_active"`
	TelegramChatID     *int64         `db:"telegram_chat_id"`
	JobTitleTarget     string         `db:"job_title_target"`
	LocationPreference string         `db:"location_preference"`
	RemotePreference   bool           `db:"remote_preference"`
	SalaryMin          *int           `db:"salary_min"`
	SalaryMax          *int           `db:"salary_max"`
	ExperienceLevel    string         `db:"experience_level"`
	CreatedAt          time.Time      `db:"created_at"`
}

// SearchCriteria is derived from a profile once per user per run and stays
// immutable for that run.
type SearchCriteria struct {
	JobTitle        string
	Location        string
	Remote          bool
	SalaryMin       *int
	SalaryMax       *int
	Industries      []string
	ExperienceLevel ExperienceLevel
}

// Criteria snapshots the search criteria from the profile. Changes to the
// profile after this point are not visible to the caller.
func (p *CandidateProfile) Criteria() (SearchCriteria, error) {
	if p.JobTitleTarget == "" {
		return SearchCriteria{}, fmt.Errorf("profile %d has no target job title", p.UserID)
	}

	level := ExperienceMid
	if p.ExperienceLevel != "" {
		parsed, err := ParseExperienceLevel(p.ExperienceLevel)
		if err != nil {
			return SearchCriteria{}, err
		}
		level = parsed
	}

	return SearchCriteria{
		JobTitle:        p.JobTitleTarget,
		Location:        p.LocationPreference,
		Remote:          p.RemotePreference,
		SalaryMin:       p.SalaryMin,
		SalaryMax:       p.SalaryMax,
		Industries:      append([]string(nil), p.Industries...),
		ExperienceLevel: level,
	}, nil
}
