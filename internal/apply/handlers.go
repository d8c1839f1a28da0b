package apply

import (
	"context"
	"time"

	"jobpilot/internal/models"

	"go.uber.org/zap"
)

// gatewayHandler drives one board's submission flow through the apply
// gateway. Board-specific behavior lives behind the gateway path.
type gatewayHandler struct {
	name    string
	path    string
	gateway *Gateway
	logger  *zap.Logger
}

func (h *gatewayHandler) Submit(ctx context.Context, posting *models.JobPosting, app *Application) models.ApplicationResult {
	result := models.ApplicationResult{
		Posting:   posting.Key(),
		AppliedAt: time.Now(),
	}

	if err := h.gateway.submit(ctx, h.path, posting, app); err != nil {
		h.logger.Warn("submission failed",
			zap.String("handler", h.name),
			zap.String("posting", posting.Key().String()),
			zap.Error(err),
		)
		result.Reason = err.Error()
		return result
	}

	result.Success = true
	return result
}

func NewLinkedInHandler(gateway *Gateway, logger *zap.Logger) Handler {
	return &gatewayHandler{name: "linkedin", path: "/apply/linkedin", gateway: gateway, logger: logger}
}

func NewIndeedHandler(gateway *Gateway, logger *zap.Logger) Handler {
	return &gatewayHandler{name: "indeed", path: "/apply/indeed", gateway: gateway, logger: logger}
}

func NewGlassdoorHandler(gateway *Gateway, logger *zap.Logger) Handler {
	return &gatewayHandler{name: "glassdoor", path: "/apply/glassdoor", gateway: gateway, logger: logger}
}

// NewGenericHandler handles any board without a dedicated flow: the
// gateway attempts to fill a standard application form on the posting URL.
func NewGenericHandler(gateway *Gateway, logger *zap.Logger) Handler {
	return &gatewayHandler{name: "generic", path: "/apply/generic", gateway: gateway, logger: logger}
}
