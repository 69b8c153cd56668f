package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"aftervisit/models"
	"aftervisit/services/intelligence"
	"aftervisit/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// writeSSEData emits one fragment as a single event-stream message. Every data line
// carries a separator space after the colon; a client strips exactly one leading
// space from the field value, so fragments that themselves begin with a space (the
// usual shape of model token deltas) survive the round trip byte for byte.
func writeSSEData(w io.Writer, text string) error {
	for _, line := range strings.Split(text, "\n") {
		if _, err := fmt.Fprintf(w, "data: %s\n", line); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func writeSSEError(w io.Writer, msg string) error {
	_, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", msg)
	return err
}

// ConsultationHandler relays consultation summary generations from the upstream model
// to the browser as server-sent events.
type ConsultationHandler struct {
	svc intelligence.SummaryService
}

func NewConsultationHandler(svc intelligence.SummaryService) *ConsultationHandler {
	return &ConsultationHandler{svc: svc}
}

// StreamSummaryHandler handles POST /api. It validates the visit payload, opens one
// upstream generation stream, and forwards each fragment in arrival order until the
// upstream finishes, fails, or the client disconnects.
func (h *ConsultationHandler) StreamSummaryHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var visit models.Visit
	if err := c.ShouldBindJSON(&visit); err != nil {
		logger.Warn("Invalid consultation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	streamID := uuid.NewString()
	userID := c.GetString("userID")

	stream, err := h.svc.StreamSummary(c.Request.Context(), visit)
	if err != nil {
		logger.Error("Failed to open upstream generation stream",
			zap.String("streamID", streamID), zap.String("userID", userID), zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "Generation service unavailable", err.Error())
		return
	}
	defer stream.Close()

	logger.Info("Relaying consultation summary",
		zap.String("streamID", streamID), zap.String("userID", userID))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	ctx := c.Request.Context()
	fragments := make(chan string)
	errc := make(chan error, 1)

	// Single producer reading the upstream stream; the handler below is the single
	// consumer writing to the client. The unbuffered channel keeps at most one
	// fragment in flight.
	go func() {
		defer close(fragments)
		for {
			text, err := stream.Recv()
			if err != nil {
				if err != io.EOF {
					errc <- err
				}
				return
			}
			select {
			case fragments <- text:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			// Client disconnected; the deferred Close aborts the upstream call.
			logger.Debug("Client disconnected mid-stream", zap.String("streamID", streamID))
			return
		case text, ok := <-fragments:
			if !ok {
				select {
				case err := <-errc:
					logger.Error("Upstream stream failed mid-generation",
						zap.String("streamID", streamID), zap.Error(err))
					_ = writeSSEError(c.Writer, "generation failed")
					c.Writer.Flush()
				default:
				}
				return
			}
			if err := writeSSEData(c.Writer, text); err != nil {
				logger.Warn("Failed to write fragment to client",
					zap.String("streamID", streamID), zap.Error(err))
				return
			}
			c.Writer.Flush()
		}
	}
}
