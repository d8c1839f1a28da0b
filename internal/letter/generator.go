// Package letter produces application cover letters. The primary path asks
// the text-generation service; any failure falls back to a deterministic
// template with the same fields, so a letter is always produced.
package letter

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"jobpilot/internal/models"
	"jobpilot/internal/textgen"

	"go.uber.org/zap"
)

const maxLetterTokens = 400

// fallbackTemplate interpolates the same fields the prompt carries.
// Parsed once at package init; reused on every Generate call.
var fallbackTemplate = template.Must(template.New("cover_letter").Parse(`Dear Hiring Manager,

I am writing to express my strong interest in the {{.Title}} position at {{.Company}}. With {{.Experience}}, I am confident in my ability to contribute to your team.

My key qualifications include:
{{range .Skills}}- {{.}}
{{end}}
I am excited about the opportunity to bring my expertise to {{.Company}} and contribute to your continued success.

Thank you for considering my application. I look forward to discussing how I can add value to your team.

Best regards,
{{.Name}}`))

// Letter is a generated cover letter. Fallback is for logging only; the
// output contract is identical either way.
type Letter struct {
	Text     string
	Fallback bool
}

type Generator struct {
	completer textgen.Completer
	logger    *zap.Logger
}

func NewGenerator(completer textgen.Completer, logger *zap.Logger) *Generator {
	return &Generator{completer: completer, logger: logger}
}

// Generate returns a non-empty cover letter for the posting. Failure of
// the text-generation service never aborts an application.
func (g *Generator) Generate(ctx context.Context, posting *models.JobPosting, profile *models.CandidateProfile) Letter {
	prompt := buildPrompt(posting, profile)

	text, err := g.completer.Complete(ctx, prompt, maxLetterTokens)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			g.logger.Warn("cover letter generation failed, using template",
				zap.Int64("user_id", profile.UserID),
				zap.String("posting", posting.Key().String()),
				zap.Error(err),
			)
		}
		return Letter{Text: templateLetter(posting, profile), Fallback: true}
	}

	return Letter{Text: strings.TrimSpace(text)}
}

func buildPrompt(posting *models.JobPosting, profile *models.CandidateProfile) string {
	var b strings.Builder

	b.WriteString("Write a professional cover letter for this job:\n\n")
	fmt.Fprintf(&b, "Job Title: %s\n", posting.Title)
	fmt.Fprintf(&b, "Company: %s\n", posting.Company)
	fmt.Fprintf(&b, "Description: %s\n\n", posting.Description)
	b.WriteString("Candidate Profile:\n")
	fmt.Fprintf(&b, "Name: %s\n", candidateName(profile))
	fmt.Fprintf(&b, "Experience: %s\n", experienceLine(profile))
	fmt.Fprintf(&b, "Skills: %s\n\n", strings.Join(topSkills(profile, 10), ", "))
	b.WriteString("Keep it concise, professional, and tailored to the role.")

	return b.String()
}

func templateLetter(posting *models.JobPosting, profile *models.CandidateProfile) string {
	skills := topSkills(profile, 3)
	if len(skills) == 0 {
		skills = []string{"a strong professional background"}
	}

	var b strings.Builder
	err := fallbackTemplate.Execute(&b, struct {
		Title      string
		Company    string
		Name       string
		Experience string
		Skills     []string
	}{
		Title:      posting.Title,
		Company:    posting.Company,
		Name:       candidateName(profile),
		Experience: experienceLine(profile),
		Skills:     skills,
	})
	if err != nil {
		// The template is static; execution can only fail on a writer
		// error, which strings.Builder never returns.
		return fmt.Sprintf("Dear Hiring Manager,\n\nI am interested in the %s position at %s.\n\nBest regards,\n%s",
			posting.Title, posting.Company, candidateName(profile))
	}

	return b.String()
}

func candidateName(profile *models.CandidateProfile) string {
	if profile.FullName != "" {
		return profile.FullName
	}
	return profile.Email
}

func experienceLine(profile *models.CandidateProfile) string {
	if profile.ExperienceSummary != "" {
		return profile.ExperienceSummary
	}
	return fmt.Sprintf("%d years of professional experience", profile.ExperienceYears)
}

func topSkills(profile *models.CandidateProfile, n int) []string {
	if len(profile.Skills) < n {
		n = len(profile.Skills)
	}
	return append([]string(nil), profile.Skills[:n]...)
}
