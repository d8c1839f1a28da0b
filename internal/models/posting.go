package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// JobPosting is one opening as reported by a single external source.
// Postings are ephemeral per aggregation call; only postings that were
// actually applied to end up persisted.
type JobPosting struct {
	ExternalID   string         `db:"external_id" json:"external_id"`
	Title        string         `db:"title" json:"title"`
	Company      string         `db:"company" json:"company"`
	Location     string         `db:"location" json:"location"`
	Remote       bool           `db:"remote" json:"remote"`
	SalaryMin    *int           `db:"salary_min" json:"salary_min"`
	SalaryMax    *int           `db:"salary_max" json:"salary_max"`
	Description  string         `db:"description" json:"description"`
	Requirements pq.StringArray `db:"requirements" json:"requirements"`
	Industries   pq.StringArray `db:"industries" json:"industries"`
	Source       string         `db:"source" json:"source"`
	URL          string         `db:"url" json:"url"`
	PostedAt     time.Time      `db:"posted_at" json:"posted_at"`
}

// PostingKey uniquely identifies a posting. The same (source, external id)
// pair must never be applied to twice for one user within a billing period.
type PostingKey struct {
	Source     string `db:"source"`
	ExternalID string `db:"external_id"`
}

func (p *JobPosting) Key() PostingKey {
	return PostingKey{Source: p.Source, ExternalID: p.ExternalID}
}

func (k PostingKey) String() string {
	return fmt.Sprintf("%s:%s", k.Source, k.ExternalID)
}

// ScoredPosting pairs a posting with its 0-100 match score.
type ScoredPosting struct {
	Posting JobPosting
	Score   int
}

// CachedPosting is the persisted form of a posting kept for later display
// alongside application records.
type CachedPosting struct {
	Source     string    `db:"source"`
	ExternalID string    `db:"external_id"`
	Title      string    `db:"title"`
	Company    string    `db:"company"`
	Location   string    `db:"location"`
	URL        string    `db:"url"`
	PostedAt   time.Time `db:"posted_at"`
	RawData    RawJSON   `db:"raw_data"`
	CachedAt   time.Time `db:"cached_at"`
}

type RawJSON json.RawMessage

func (r RawJSON) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	return json.RawMessage(r).MarshalJSON()
}

func (r *RawJSON) Scan(value interface{}) error {
	if value == nil {
		*r = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	*r = RawJSON(bytes)
	return nil
}
