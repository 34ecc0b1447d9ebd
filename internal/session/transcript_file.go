package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mentorinc/rolecoach/internal/models"
	"gopkg.in/yaml.v3"
)

// TranscriptFile is the on-disk shape accepted by the scorer: the same body as
// the scoring endpoint.
type TranscriptFile struct {
	Messages models.Transcript `json:"messages" yaml:"messages"`
	Scenario models.Scenario   `json:"scenario,omitempty" yaml:"scenario,omitempty"`
}

// ReadTranscriptFile loads a transcript from a JSON or YAML file. Besides the
// TranscriptFile object form, a bare list of turns is accepted. The scenario is
// empty when the file does not name one.
func ReadTranscriptFile(path string) (*TranscriptFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading transcript file: %w", err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "- ") {
		var turns models.Transcript
		if err := unmarshal(data, &turns); err != nil {
			return nil, fmt.Errorf("parsing transcript file %s: %w", filepath.Base(path), err)
		}
		return &TranscriptFile{Messages: turns}, nil
	}

	var tf TranscriptFile
	if err := unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing transcript file %s: %w", filepath.Base(path), err)
	}
	return &tf, nil
}
