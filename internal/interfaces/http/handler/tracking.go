package handler

import (
	"context"
	"net/http"
	"strings"

	messagingapp "github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/application/messaging"
	"github.com/associacaosimplesatitude-debug/projetoananias-sub008/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackingAPI records opens and clicks of sent emails
type TrackingAPI interface {
	RecordOpen(ctx context.Context, id uuid.UUID) error
	RecordClick(ctx context.Context, id uuid.UUID, target string) error
	VerifyClick(id uuid.UUID, target, sig string) bool
}

// TrackingHandler serves the open pixel and the click redirect
type TrackingHandler struct {
	BaseHandler
	tracker TrackingAPI
}

// NewTrackingHandler creates a new TrackingHandler
func NewTrackingHandler(tracker TrackingAPI) *TrackingHandler {
	return &TrackingHandler{tracker: tracker}
}

// Open handles GET /t/o/:file where file is "<message id>.gif". The pixel is
// always served; recording is best effort.
// @ID           trackOpen
// @Summary      Email open pixel
// @Description  Always serves a 1x1 GIF
// @Tags         tracking
// @Produce      image/gif
// @Param        file path string true "Message ID followed by .gif"
// @Success      200 {file} binary
// @Router       /t/o/{file} [get]
func (h *TrackingHandler) Open(c *gin.Context) {
	raw := strings.TrimSuffix(c.Param("file"), ".gif")
	if id, err := uuid.Parse(raw); err == nil {
		if err := h.tracker.RecordOpen(c.Request.Context(), id); err != nil {
			logger.GetGinLogger(c).Debug("open not recorded",
				zap.String("message_id", raw),
				zap.Error(err))
		}
	}

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Data(http.StatusOK, "image/gif", messagingapp.PixelGIF)
}

// Click handles GET /t/c/:id?u=<target>&s=<signature>. Only signed http(s)
// links issued for that message are followed.
// @ID           trackClick
// @Summary      Tracked link redirect
// @Description  Records the click and redirects to a signed http(s) target
// @Tags         tracking
// @Produce      json
// @Param        id path string true "Message ID" format(uuid)
// @Param        u query string true "Target URL"
// @Param        s query string true "Link signature"
// @Success      302
// @Failure      400 {object} ErrorResponse
// @Router       /t/c/{id} [get]
func (h *TrackingHandler) Click(c *gin.Context) {
	target := c.Query("u")
	if !messagingapp.ValidTarget(target) {
		h.BadRequest(c, "Invalid redirect target")
		return
	}
	id, ok := parseUUIDParam(c, "id")
	if !ok || !h.tracker.VerifyClick(id, target, c.Query("s")) {
		h.BadRequest(c, "Invalid tracking link")
		return
	}

	if err := h.tracker.RecordClick(c.Request.Context(), id, target); err != nil {
		logger.GetGinLogger(c).Debug("click not recorded",
			zap.String("message_id", id.String()),
			zap.Error(err))
	}

	c.Redirect(http.StatusFound, target)
}
