package match_test

import (
	"testing"
	"time"

	"jobpilot/internal/match"
	"jobpilot/internal/models"
)

func intPtr(v int) *int { return &v }

func backendProfile() *models.CandidateProfile {
	return &models.CandidateProfile{
		UserID:          1,
		FullName:        "Sam Doe",
		Skills:          []string{"Go", "SQL"},
		ExperienceYears: 6,
		Industries:      []string{"Technology"},
	}
}

func backendCriteria() models.SearchCriteria {
	return models.SearchCriteria{
		JobTitle:   "Backend Engineer",
		Remote:     true,
		Industries: []string{"Technology"},
	}
}

func backendPosting() models.JobPosting {
	return models.JobPosting{
		ExternalID: "42",
		Title:      "Backend Engineer",
		Company:    "Acme",
		Industries: []string{"Technology"},
		Remote:     true,
		SalaryMin:  intPtr(110000),
		SalaryMax:  intPtr(160000),
		Source:     "linkedin",
		PostedAt:   time.Now(),
	}
}

// ── Score range and determinism ────────────────────────────────────────────

func TestScore_InRange(t *testing.T) {
	profile := backendProfile()
	criteria := backendCriteria()

	postings := []models.JobPosting{
		backendPosting(),
		{},
		{Title: "Plumber", Location: "Dallas"},
		{Title: "Backend Engineer", Industries: []string{"Finance"}},
	}

	for _, posting := range postings {
		got := match.Score(profile, criteria, &posting)
		if got < 0 || got > 100 {
			t.Errorf("Score(%q) = %d, want value in [0,100]", posting.Title, got)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	profile := backendProfile()
	criteria := backendCriteria()
	posting := backendPosting()

	first := match.Score(profile, criteria, &posting)
	for i := 0; i < 50; i++ {
		if got := match.Score(profile, criteria, &posting); got != first {
			t.Fatalf("Score changed between calls: first %d, call %d gave %d", first, i, got)
		}
	}
}

// ── Example scenario: strong match passes the auto-apply threshold ────────

func TestScore_StrongMatch(t *testing.T) {
	profile := backendProfile()
	criteria := backendCriteria()
	posting := backendPosting()

	got := match.Score(profile, criteria, &posting)
	if got < 85 {
		t.Errorf("Score = %d, want >= 85 for a strong match", got)
	}
}

// ── Sub-score edge cases ───────────────────────────────────────────────────

func TestScore_EmptyIndustriesContributeZero(t *testing.T) {
	profile := backendProfile()
	profile.Industries = nil
	criteria := backendCriteria()
	posting := backendPosting()

	withIndustries := match.Score(backendProfile(), criteria, &posting)
	without := match.Score(profile, criteria, &posting)

	if without >= withIndustries {
		t.Errorf("empty candidate industries: score %d, want less than %d", without, withIndustries)
	}
}

func TestScore_EmptyPostingDoesNotPanic(t *testing.T) {
	posting := models.JobPosting{}
	got := match.Score(backendProfile(), backendCriteria(), &posting)
	if got < 0 || got > 100 {
		t.Errorf("Score(empty posting) = %d, want value in [0,100]", got)
	}
}

func TestScore_SalaryMismatch(t *testing.T) {
	profile := backendProfile()

	criteria := backendCriteria()
	criteria.SalaryMin = intPtr(200000)

	posting := backendPosting() // tops out at 160000

	matching := backendCriteria()
	base := match.Score(profile, matching, &posting)
	constrained := match.Score(profile, criteria, &posting)

	if constrained >= base {
		t.Errorf("non-overlapping salary: score %d, want less than %d", constrained, base)
	}
}

func TestScore_SalaryUnknownWithConstraint(t *testing.T) {
	criteria := backendCriteria()
	criteria.SalaryMin = intPtr(100000)

	posting := backendPosting()
	posting.SalaryMin = nil
	posting.SalaryMax = nil

	withSalary := backendPosting()
	if got, want := match.Score(backendProfile(), criteria, &posting), match.Score(backendProfile(), criteria, &withSalary); got >= want {
		t.Errorf("posting without salary data: score %d, want less than %d", got, want)
	}
}

func TestScore_TitlePartialCredit(t *testing.T) {
	profile := backendProfile()
	criteria := backendCriteria()

	exact := backendPosting()
	partial := backendPosting()
	partial.Title = "Senior Engineer"
	unrelated := backendPosting()
	unrelated.Title = "Accountant"

	exactScore := match.Score(profile, criteria, &exact)
	partialScore := match.Score(profile, criteria, &partial)
	unrelatedScore := match.Score(profile, criteria, &unrelated)

	if !(exactScore > partialScore && partialScore > unrelatedScore) {
		t.Errorf("title credit ordering broken: exact %d, partial %d, unrelated %d",
			exactScore, partialScore, unrelatedScore)
	}
}

func TestScore_RemoteMismatchFallsBackToLocation(t *testing.T) {
	profile := backendProfile()

	criteria := backendCriteria()
	criteria.Remote = true
	criteria.Location = "Berlin"

	onsite := backendPosting()
	onsite.Remote = false
	onsite.Location = "Berlin"

	elsewhere := backendPosting()
	elsewhere.Remote = false
	elsewhere.Location = "Munich"

	if got, want := match.Score(profile, criteria, &onsite), match.Score(profile, criteria, &elsewhere); got <= want {
		t.Errorf("location fallback broken: matching city %d, other city %d", got, want)
	}
}
