package relay

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dotsetgreg/personagen/pkg/persona"
)

type chatRequest struct {
	Persona  map[string]any `json:"persona"`
	History  []persona.Turn `json:"history"`
	Message  string         `json:"message"`
	FullText string         `json:"full_text"`
}

type chatResponse struct {
	persona.Reply
	History  []persona.Turn `json:"history,omitempty"`
	Revision int64          `json:"revision,omitempty"`
}

// handleChat answers a message for a persona supplied by the client. The
// hosted model is tried first; any failure is answered locally.
func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid chat request")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(c, http.StatusBadRequest, "Message is required")
		return
	}

	p := persona.Normalize(req.Persona)
	p.ConversationHistory = append([]persona.Turn(nil), req.History...)
	history := req.History
	if history == nil {
		history = []persona.Turn{}
	}

	reply := s.reply(c.Request.Context(), persona.Request{
		Persona:  &p,
		Message:  req.Message,
		History:  history,
		FullText: req.FullText,
	})
	c.JSON(http.StatusOK, chatResponse{Reply: reply, History: p.ConversationHistory})
}

func (s *Server) reply(ctx context.Context, req persona.Request) persona.Reply {
	gen := persona.NewGenerator(s.remote, s.jitter, s.opts.HistoryLimit)
	reply := gen.Respond(ctx, req)
	if strings.TrimSpace(reply.Response) == "" {
		reply.Response = persona.FallbackReply
	}
	if s.remote != nil && reply.Mode != persona.ModeRemote {
		s.metrics.UpstreamFailed("chat")
	}
	s.metrics.ChatReplied(reply.Mode)
	return reply
}
