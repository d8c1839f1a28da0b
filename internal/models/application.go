package models

import (
	"fmt"
	"time"
)

// ApplicationStatus follows the graph:
//
//	applied ──► viewed ──► response ──► offer
//	   │           │           │
//	   └───────────┴───────────┴──► rejected
//
// offer and rejected are terminal. The pipeline only ever creates records
// in the applied state; later transitions come from external signal
// ingestion.
type ApplicationStatus string

const (
	StatusApplied  ApplicationStatus = "applied"
	StatusViewed   ApplicationStatus = "viewed"
	StatusResponse ApplicationStatus = "response"
	StatusRejected ApplicationStatus = "rejected"
	StatusOffer    ApplicationStatus = "offer"
)

var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusApplied:  {StatusViewed, StatusResponse, StatusRejected},
	StatusViewed:   {StatusResponse, StatusRejected},
	StatusResponse: {StatusOffer, StatusRejected},
	// offer and rejected are terminal
}

func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	st := ApplicationStatus(s)
	switch st {
	case StatusApplied, StatusViewed, StatusResponse, StatusRejected, StatusOffer:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsStatusTransitionAllowed reports whether moving from → to is permitted.
func IsStatusTransitionAllowed(from, to ApplicationStatus) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplicationResult is the outcome of one submission attempt. Produced by
// the submitter, consumed by the recorder.
type ApplicationResult struct {
	Posting   PostingKey
	Success   bool
	AppliedAt time.Time
	Reason    string
}

// ApplicationRecord is the persisted outcome of a successful submission.
type ApplicationRecord struct {
	ID           int64             `db:"id"`
	UserID       int64             `db:"user_id"`
	Source       string            `db:"source"`
	ExternalID   string            `db:"external_id"`
	JobTitle     string            `db:"job_title"`
	Company      string            `db:"company"`
	CoverLetter  string            `db:"cover_letter"`
	Status       ApplicationStatus `db:"status"`
	AppliedAt    time.Time         `db:"applied_at"`
	StatusChange time.Time         `db:"status_changed_at"`
}
