package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"scholarmap/bibnet/internal/corpus"
)

// ReadJSON reads an array of publication objects. A record without a topic
// number is unassigned.
func ReadJSON(r io.Reader) ([]corpus.Publication, error) {
	var raw []json.RawMessage
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding publications: %w", err)
	}
	pubs := make([]corpus.Publication, len(raw))
	for i, msg := range raw {
		p := &pubs[i]
		p.Topic.Number = corpus.NoTopic
		if err := json.Unmarshal(msg, p); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		p.ID = strings.TrimSpace(p.ID)
		p.Kind = ParseKind(string(p.Kind))
		p.CitingIDs = NormalizeIDs(p.CitingIDs)
		if err := corpus.Validate(*p); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return pubs, nil
}

// ReadFile dispatches on the file extension (.xlsx or .json).
func ReadFile(path string) ([]corpus.Publication, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(path)
	case ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		return ReadJSON(f)
	default:
		return nil, fmt.Errorf("unsupported input format %q (want .xlsx or .json)", filepath.Ext(path))
	}
}
