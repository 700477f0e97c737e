package relay

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/persona"
	"github.com/dotsetgreg/personagen/pkg/session"
	"github.com/dotsetgreg/personagen/pkg/speech"
)

type speakRequest struct {
	Text        string `json:"text"`
	Voice       string `json:"voice"`
	Nationality string `json:"nationality"`
}

type sampleSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (s *Server) handleSpeak(c *gin.Context) {
	var req speakRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid speak request")
		return
	}
	voice := strings.TrimSpace(req.Voice)
	if voice == "" {
		voice = speech.VoiceFor(req.Nationality, s.opts.DefaultVoice)
	}

	audio, err := s.speech.Synthesize(c.Request.Context(), req.Text, voice)
	switch {
	case errors.Is(err, speech.ErrDisabled):
		respondError(c, http.StatusNotFound, "Speech synthesis is disabled")
		return
	case errors.Is(err, speech.ErrEmptyInput):
		respondError(c, http.StatusBadRequest, "Text is required")
		return
	case err != nil:
		s.metrics.UpstreamFailed("speech")
		logger.WarnCF("relay", "Speech synthesis failed", map[string]interface{}{"error": err.Error()})
		respondError(c, http.StatusBadGateway, "Speech synthesis failed")
		return
	}
	c.Header("X-Voice", audio.Voice)
	c.Data(http.StatusOK, audio.ContentType, audio.Data)
}

func (s *Server) handleListSamples(c *gin.Context) {
	ids := persona.SampleIDs()
	out := make([]sampleSummary, 0, len(ids))
	for _, id := range ids {
		p, err := persona.Sample(id)
		if err != nil {
			continue
		}
		out = append(out, sampleSummary{ID: id, Name: p.Name, Title: p.Title})
	}
	c.JSON(http.StatusOK, gin.H{"samples": out})
}

func (s *Server) handleGetSample(c *gin.Context) {
	res, err := s.builder.Build(c.Request.Context(), persona.Input{Kind: persona.KindSample, SampleID: c.Param("id")})
	if err != nil {
		respondError(c, http.StatusNotFound, "Unknown sample persona")
		return
	}
	c.JSON(http.StatusOK, res.Persona)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleReady reports whether the session store answers.
func (s *Server) handleReady(c *gin.Context) {
	body := gin.H{
		"status":   "ready",
		"provider": s.opts.ProviderName,
		"remote":   s.remote != nil,
	}
	if s.sessions != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		_, err := s.sessions.Get(ctx, "readiness-probe")
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			body["status"] = "unavailable"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
