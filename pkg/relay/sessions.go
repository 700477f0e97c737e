package relay

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/persona"
	"github.com/dotsetgreg/personagen/pkg/session"
)

type putPersonaRequest struct {
	SampleID string         `json:"sample_id"`
	Text     string         `json:"text"`
	Persona  map[string]any `json:"persona"`
	FullText string         `json:"full_text"`
	// ExpectedRevision guards against concurrent writers; omit it for
	// last-write-wins.
	ExpectedRevision *int64 `json:"expected_revision"`
}

type sessionResponse struct {
	*session.Session
	Source string `json:"source,omitempty"`
}

type sessionChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) sessionID(c *gin.Context) (string, bool) {
	if s.sessions == nil {
		respondError(c, http.StatusNotFound, "Sessions are not enabled")
		return "", false
	}
	id := c.Param("id")
	if !session.ValidID(id) {
		respondError(c, http.StatusBadRequest, "Invalid session id")
		return "", false
	}
	return id, true
}

func (s *Server) respondStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrRevisionConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, session.ErrInvalidID):
		respondError(c, http.StatusBadRequest, "Invalid session id")
	default:
		logger.ErrorCF("relay", "Session store failed", map[string]interface{}{"error": err.Error()})
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Server) handleGetSession(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	sess, err := s.sessions.Get(c.Request.Context(), id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

// handlePutSessionPersona replaces the session's current persona. The new
// persona supersedes the old one, history included.
func (s *Server) handlePutSessionPersona(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	var req putPersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid persona request")
		return
	}

	sources := 0
	for _, set := range []bool{strings.TrimSpace(req.SampleID) != "", strings.TrimSpace(req.Text) != "", req.Persona != nil} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		respondError(c, http.StatusBadRequest, "Provide exactly one of sample_id, text or persona")
		return
	}

	next := &session.Session{ID: id}
	var source string
	switch {
	case req.Persona != nil:
		p := persona.Normalize(req.Persona)
		next.CurrentPersona = &p
		next.FullText = req.FullText
		source = "client"
	case strings.TrimSpace(req.SampleID) != "":
		res, err := s.builder.Build(c.Request.Context(), persona.Input{Kind: persona.KindSample, SampleID: req.SampleID})
		if err != nil {
			respondError(c, http.StatusNotFound, "Unknown sample persona")
			return
		}
		s.recordBuild(res, 0)
		next.CurrentPersona = &res.Persona
		next.SelectedPersona = strings.ToLower(strings.TrimSpace(req.SampleID))
		source = res.Source
	default:
		start := time.Now()
		res, err := s.builder.Build(c.Request.Context(), persona.Input{Kind: persona.KindDocument, Text: req.Text})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "Could not build persona")
			return
		}
		s.recordBuild(res, time.Since(start))
		next.CurrentPersona = &res.Persona
		next.CustomText = req.Text
		next.FullText = req.Text
		source = res.Source
	}

	expected := session.LastWriteWins
	if req.ExpectedRevision != nil {
		expected = *req.ExpectedRevision
	}
	saved, err := s.sessions.Save(c.Request.Context(), next, expected)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{Session: saved, Source: source})
}

// handleSessionChat answers against the stored persona and persists the
// updated history. A concurrent persona change wins over the chat turn.
func (s *Server) handleSessionChat(c *gin.Context) {
	id, ok := s.sessionID(c)
	if !ok {
		return
	}
	var req sessionChatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		respondError(c, http.StatusBadRequest, "Message is required")
		return
	}

	ctx := c.Request.Context()
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	if sess.CurrentPersona == nil {
		respondError(c, http.StatusConflict, "Session has no persona yet")
		return
	}

	reply := s.reply(ctx, persona.Request{
		Persona:  sess.CurrentPersona,
		Message:  req.Message,
		FullText: sess.FullText,
	})

	saved, err := s.sessions.Save(ctx, sess, sess.Revision)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{
		Reply:    reply,
		History:  saved.CurrentPersona.ConversationHistory,
		Revision: saved.Revision,
	})
}
