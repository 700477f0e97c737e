package relay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dotsetgreg/personagen/pkg/logger"
	"github.com/dotsetgreg/personagen/pkg/pdftext"
	"github.com/dotsetgreg/personagen/pkg/persona"
)

var pdfMagic = []byte("%PDF-")

type uploadPDFResponse struct {
	Persona  persona.Persona `json:"persona"`
	FullText string          `json:"full_text"`
	Source   string          `json:"source"`
	Fallback []string        `json:"fallback,omitempty"`
}

// handleUploadPDF stores the upload, extracts its text and builds a persona.
func (s *Server) handleUploadPDF(c *gin.Context) {
	fh, data, ok := s.readUpload(c)
	if !ok {
		return
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		respondError(c, http.StatusBadRequest, "Uploaded file is not a PDF")
		return
	}
	if _, err := s.store(fh.Filename, data); err != nil {
		logger.ErrorCF("relay", "Failed to store upload", map[string]interface{}{"error": err.Error()})
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	var fullText string
	doc, err := pdftext.ExtractWithLimits(data, pdftext.Limits{MaxPages: s.opts.MaxPDFPages})
	switch {
	case errors.Is(err, pdftext.ErrTooManyPages):
		respondError(c, http.StatusRequestEntityTooLarge, err.Error())
		return
	case err != nil:
		// The model can still read the raw PDF, so keep going without text.
		s.metrics.UpstreamFailed("pdf")
		logger.WarnCF("relay", "Could not extract text from PDF", map[string]interface{}{
			"file":  fh.Filename,
			"error": err.Error(),
		})
	default:
		fullText = doc.Text
	}

	start := time.Now()
	res, err := s.builder.Build(c.Request.Context(), persona.Input{
		Kind:     persona.KindDocument,
		Text:     fullText,
		PDF:      data,
		Filename: fh.Filename,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not build persona")
		return
	}
	s.recordBuild(res, time.Since(start))

	c.JSON(http.StatusOK, uploadPDFResponse{
		Persona:  res.Persona,
		FullText: fullText,
		Source:   res.Source,
		Fallback: res.Fallback,
	})
}

// handleUpload accepts a file for later processing.
func (s *Server) handleUpload(c *gin.Context) {
	fh, data, ok := s.readUpload(c)
	if !ok {
		return
	}
	if _, err := s.store(fh.Filename, data); err != nil {
		logger.ErrorCF("relay", "Failed to store upload", map[string]interface{}{"error": err.Error()})
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"filename": fh.Filename, "status": "received"})
}

func (s *Server) readUpload(c *gin.Context) (*multipart.FileHeader, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 2*s.opts.MaxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "File too large")
			return nil, nil, false
		}
		respondError(c, http.StatusBadRequest, "No file uploaded")
		return nil, nil, false
	}
	if fh.Size > s.opts.MaxUploadBytes {
		respondError(c, http.StatusRequestEntityTooLarge, "File too large")
		return nil, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read upload")
		return nil, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxUploadBytes+1))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Could not read upload")
		return nil, nil, false
	}
	if len(data) == 0 {
		respondError(c, http.StatusBadRequest, "Uploaded file is empty")
		return nil, nil, false
	}
	return fh, data, true
}

// store writes data under the upload dir with a collision-free name.
func (s *Server) store(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.opts.UploadDir, uuid.NewString()+"-"+safeFilename(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

func safeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	if len(out) > 100 {
		out = out[len(out)-100:]
	}
	return out
}

func (s *Server) recordBuild(res persona.Result, elapsed time.Duration) {
	for _, f := range res.Fallback {
		name, _, _ := strings.Cut(f, ":")
		s.metrics.UpstreamFailed(name)
	}
	if res.Source == persona.SourceSample {
		elapsed = 0
	}
	s.metrics.PersonaBuilt(res.Source, elapsed)
}
