// Package apply dispatches application submissions to source-specific
// handlers and paces consecutive submissions for one user.
package apply

import (
	"context"
	"strings"

	"jobpilot/internal/models"
)

// Application carries the user-side data of one submission.
type Application struct {
	UserID      int64
	Email       string
	Phone       string
	LinkedInURL string
	ResumeURL   string
	CoverLetter string
}

// Handler submits one application to one kind of job board. Handlers
// convert every internal failure into a result with Success=false and a
// human-readable reason; they never return raw errors.
type Handler interface {
	Submit(ctx context.Context, posting *models.JobPosting, app *Application) models.ApplicationResult
}

// Registry selects the handler for a posting's source. Unrecognized
// sources fall through to the generic handler; new sources are added by
// registering, never by editing dispatch.
type Registry struct {
	handlers map[string]Handler
	generic  Handler
}

func NewRegistry(generic Handler) *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
		generic:  generic,
	}
}

func (r *Registry) Register(sourceName string, h Handler) {
	r.handlers[strings.ToLower(sourceName)] = h
}

// HandlerFor returns the handler registered for the source, or the
// generic handler.
func (r *Registry) HandlerFor(sourceName string) Handler {
	if h, ok := r.handlers[strings.ToLower(sourceName)]; ok {
		return h
	}
	return r.generic
}
