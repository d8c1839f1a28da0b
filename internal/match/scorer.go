// Package match scores candidate-to-posting fit and filters scored
// postings down to the ones worth applying to.
package match

import (
	"strings"

	"jobpilot/internal/models"
)

// Sub-score weights. Each sub-score is clamped to its weight before
// summing; the total is clamped to 100.
const (
	industryWeight = 30
	titleWeight    = 40
	locationWeight = 15
	salaryWeight   = 15
)

// Score computes the 0-100 relevance of a posting for a candidate. It is
// deterministic: identical inputs always produce the identical score.
func Score(profile *models.CandidateProfile, criteria models.SearchCriteria, posting *models.JobPosting) int {
	total := industryScore(profile.Industries, posting.Industries) +
		titleScore(criteria.JobTitle, posting.Title) +
		locationScore(criteria, posting) +
		salaryScore(criteria, posting)

	return clamp(total, 0, 100)
}

// industryScore is proportional to how many of the candidate's industries
// the posting covers. Empty sets on either side contribute zero.
func industryScore(candidate, posting []string) int {
	if len(candidate) == 0 || len(posting) == 0 {
		return 0
	}

	postingSet := make(map[string]bool, len(posting))
	for _, industry := range posting {
		postingSet[strings.ToLower(strings.TrimSpace(industry))] = true
	}

	matched := 0
	for _, industry := range candidate {
		if postingSet[strings.ToLower(strings.TrimSpace(industry))] {
			matched++
		}
	}

	return clamp(matched*industryWeight/len(candidate), 0, industryWeight)
}

// titleScore is proportional to how many words of the target title appear
// in the posting title.
func titleScore(target, title string) int {
	targetWords := tokenize(target)
	if len(targetWords) == 0 {
		return 0
	}

	titleWords := make(map[string]bool)
	for _, word := range tokenize(title) {
		titleWords[word] = true
	}

	matched := 0
	for _, word := range targetWords {
		if titleWords[word] {
			matched++
		}
	}

	return clamp(matched*titleWeight/len(targetWords), 0, titleWeight)
}

// locationScore gives full credit when the remote preference matches a
// remote posting, or when the preferred location matches the posting's.
// No location preference means no constraint.
func locationScore(criteria models.SearchCriteria, posting *models.JobPosting) int {
	if criteria.Remote && posting.Remote {
		return locationWeight
	}

	if criteria.Location == "" {
		return locationWeight
	}

	want := strings.ToLower(criteria.Location)
	have := strings.ToLower(posting.Location)
	if have != "" && (strings.Contains(have, want) || strings.Contains(want, have)) {
		return locationWeight
	}

	return 0
}

// salaryScore gives full credit when the desired range overlaps the
// posting's range. An unconstrained candidate always gets full credit; a
// posting without salary data gets none when the candidate constrains.
func salaryScore(criteria models.SearchCriteria, posting *models.JobPosting) int {
	if criteria.SalaryMin == nil && criteria.SalaryMax == nil {
		return salaryWeight
	}

	if posting.SalaryMin == nil && posting.SalaryMax == nil {
		return 0
	}

	wantMin, wantMax := rangeBounds(criteria.SalaryMin, criteria.SalaryMax)
	haveMin, haveMax := rangeBounds(posting.SalaryMin, posting.SalaryMax)

	if haveMax >= wantMin && wantMax >= haveMin {
		return salaryWeight
	}

	return 0
}

func rangeBounds(min, max *int) (int, int) {
	lo, hi := 0, int(^uint(0)>>1)
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	return lo, hi
}

func tokenize(s string) []string {
	var words []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:()[]/-")
		if word != "" {
			words = append(words, word)
		}
	}
	return words
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
