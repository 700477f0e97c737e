// Package session stores the per-visitor persona state that the web client
// used to keep in local storage. Every write carries an expected revision so
// concurrent uploads for the same session can't silently overwrite each other.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dotsetgreg/personagen/pkg/persona"
)

// Keys under which session state is persisted.
const (
	KeyCurrentPersona  = "currentPersona"
	KeyFullText        = "currentPersonaFullText"
	KeySelectedPersona = "selectedPersona"
	KeyCustomText      = "customText"
)

// LastWriteWins disables the revision check on Save.
const LastWriteWins int64 = -1

var (
	ErrNotFound         = errors.New("session not found")
	ErrRevisionConflict = errors.New("session revision conflict")
	ErrInvalidID        = errors.New("invalid session id")
)

type Session struct {
	ID              string           `json:"id"`
	Revision        int64            `json:"revision"`
	CurrentPersona  *persona.Persona `json:"currentPersona"`
	FullText        string           `json:"currentPersonaFullText"`
	SelectedPersona string           `json:"selectedPersona"`
	CustomText      string           `json:"customText"`
	UpdatedAtMS     int64            `json:"updatedAtMs"`
}

// Store persists sessions.
//
// Save writes s and returns the stored copy with its new revision. An
// expectedRevision of LastWriteWins skips the check; 0 means the session must
// not exist yet; any other value must match the stored revision.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, expectedRevision int64) (*Session, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id is usable as a session key.
func ValidID(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return false
		}
	}
	return true
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.CurrentPersona != nil {
		p := s.CurrentPersona.Clone()
		out.CurrentPersona = &p
	}
	return &out
}

// Values flattens s into its persisted key/value form. Empty fields are
// omitted.
func (s *Session) Values() (map[string]string, error) {
	values := map[string]string{}
	if s.CurrentPersona != nil {
		data, err := json.Marshal(s.CurrentPersona)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", KeyCurrentPersona, err)
		}
		values[KeyCurrentPersona] = string(data)
	}
	if s.FullText != "" {
		values[KeyFullText] = s.FullText
	}
	if s.SelectedPersona != "" {
		values[KeySelectedPersona] = s.SelectedPersona
	}
	if s.CustomText != "" {
		values[KeyCustomText] = s.CustomText
	}
	return values, nil
}

// apply loads persisted values into s. Stored personas are normalized on the
// way in so older rows always come back in canonical shape.
func (s *Session) apply(values map[string]string) error {
	if raw, ok := values[KeyCurrentPersona]; ok && raw != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return fmt.Errorf("decode %s: %w", KeyCurrentPersona, err)
		}
		p := persona.Normalize(m)
		s.CurrentPersona = &p
	}
	s.FullText = values[KeyFullText]
	s.SelectedPersona = values[KeySelectedPersona]
	s.CustomText = values[KeyCustomText]
	return nil
}

func checkRevision(current int64, exists bool, expected int64) error {
	if expected == LastWriteWins {
		return nil
	}
	if !exists {
		if expected == 0 {
			return nil
		}
		return fmt.Errorf("%w: expected revision %d, session does not exist", ErrRevisionConflict, expected)
	}
	if current != expected {
		return fmt.Errorf("%w: expected revision %d, have %d", ErrRevisionConflict, expected, current)
	}
	return nil
}
