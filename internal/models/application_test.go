package models_test

import (
	"testing"

	"jobpilot/internal/models"
)

func TestParseApplicationStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    models.ApplicationStatus
		wantErr bool
	}{
		{"applied", models.StatusApplied, false},
		{"viewed", models.StatusViewed, false},
		{"response", models.StatusResponse, false},
		{"rejected", models.StatusRejected, false},
		{"offer", models.StatusOffer, false},
		{"", "", true},
		{"pending", "", true},
		{"Applied", "", true},
	}

	for _, tt := range tests {
		got, err := models.ParseApplicationStatus(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseApplicationStatus(%q) expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseApplicationStatus(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseApplicationStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to models.ApplicationStatus }{
		{models.StatusApplied, models.StatusViewed},
		{models.StatusApplied, models.StatusResponse},
		{models.StatusApplied, models.StatusRejected},
		{models.StatusViewed, models.StatusResponse},
		{models.StatusViewed, models.StatusRejected},
		{models.StatusResponse, models.StatusOffer},
		{models.StatusResponse, models.StatusRejected},
	}
	for _, tt := range allowed {
		if !models.IsStatusTransitionAllowed(tt.from, tt.to) {
			t.Errorf("transition %s -> %s should be allowed", tt.from, tt.to)
		}
	}

	forbidden := []struct{ from, to models.ApplicationStatus }{
		{models.StatusViewed, models.StatusApplied},
		{models.StatusResponse, models.StatusViewed},
		{models.StatusRejected, models.StatusApplied},
		{models.StatusRejected, models.StatusOffer},
		{models.StatusOffer, models.StatusRejected},
		{models.StatusOffer, models.StatusResponse},
		{models.StatusApplied, models.StatusApplied},
		{models.StatusApplied, models.StatusOffer},
	}
	for _, tt := range forbidden {
		if models.IsStatusTransitionAllowed(tt.from, tt.to) {
			t.Errorf("transition %s -> %s should be rejected", tt.from, tt.to)
		}
	}
}

func TestPostingKeyString(t *testing.T) {
	key := models.PostingKey{Source: "linkedin", ExternalID: "4021"}
	if got := key.String(); got != "linkedin:4021" {
		t.Errorf("PostingKey.String() = %q, want %q", got, "linkedin:4021")
	}
}
