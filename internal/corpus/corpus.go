// Package corpus loads source records from fixed-schema JSON files.
//
// Three corpus formats are supported: work-experience narratives,
// technical question/answer pairs and free-form knowledge-base entries.
// Each loader normalizes its format into domain.Record so the ingestion
// pipeline stays format-agnostic.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stardex-io/stardex/internal/domain"
)

// recordID accepts both JSON numbers and JSON strings, since corpus files
// use either form for the id field.
type recordID string

func (id *recordID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = recordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = recordID(n.String())
	return nil
}

func (id recordID) String() string { return string(id) }

// readJSON reads and parses a corpus file. Any failure is wrapped with
// domain.ErrCorpusInvalid because ingestion cannot proceed without a
// complete record set.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read corpus file %s: %s: %w", path, err, domain.ErrCorpusInvalid)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse corpus file %s: %s: %w", path, err, domain.ErrCorpusInvalid)
	}
	return nil
}
