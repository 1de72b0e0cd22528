package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-tos/internal/tos"
)

// PreviewRequest is one client message on /ws/preview.
type PreviewRequest struct {
	TotalItems   int              `json:"total_items"`
	Competencies []tos.Competency `json:"competencies"`
}

// PreviewResponse carries either the allocation summary or an error.
type PreviewResponse struct {
	Summary *tos.Summary `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// handlePreview answers every client message with the summary the current
// selection would produce, so the form can show counts while the teacher
// edits it. Nothing is stored.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	for {
		var req PreviewRequest
		if err := wsjson.Read(ctx, c, &req); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("preview connection closed", "error", err)
			}
			return
		}

		if err := wsjson.Write(ctx, c, s.preview(req)); err != nil {
			slog.Debug("preview write failed", "error", err)
			return
		}
	}
}

func (s *Server) preview(req PreviewRequest) PreviewResponse {
	total := req.TotalItems
	if total == 0 {
		total = s.defaultItems
	}
	if total < s.minItems || total > s.maxItems {
		return PreviewResponse{Error: fmt.Sprintf("total_items must be within [%d, %d], got %d", s.minItems, s.maxItems, total)}
	}

	summary, err := s.builder.Preview(req.Competencies, total)
	if err != nil {
		return PreviewResponse{Error: err.Error()}
	}
	return PreviewResponse{Summary: &summary}
}
