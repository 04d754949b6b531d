package session

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// WriteJSON encodes s as an indented JSON document.
func WriteJSON(w io.Writer, s *Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return nil
}

// SaveFile writes s to path, creating parent directories as needed.
func SaveFile(path string, s *Session) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	if err := WriteJSON(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads and validates a session document.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session file %s: %w", path, err)
	}
	return &s, nil
}

var fileNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// DefaultFileName is the file name a session is saved under when the user
// does not pick one. The result never contains a path separator.
func DefaultFileName(topic string) string {
	return fmt.Sprintf("haiku_session_%s.json", fileNameReplacer.Replace(topic))
}
