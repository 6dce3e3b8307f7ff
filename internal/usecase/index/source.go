package index

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kailas-cloud/solrmap/internal/domain/field"
)

// jsonRecord is one line of a JSON Lines record dump.
type jsonRecord struct {
	App   string         `json:"app"`
	Model string         `json:"model"`
	ID    string         `json:"id"`
	URL   string         `json:"url"`
	Attrs map[string]any `json:"attrs"`
}

// JSONLSource is a RecordSource read from JSON Lines.
type JSONLSource struct {
	sep     string
	records []field.MapRecord
}

// NewJSONLSource reads every record from r.
func NewJSONLSource(r io.Reader, sep string) (*JSONLSource, error) {
	if sep == "" {
		sep = field.DefaultSeparator
	}
	src := &JSONLSource{sep: sep}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var jr jsonRecord
		if err := json.Unmarshal(sc.Bytes(), &jr); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if jr.App == "" || jr.Model == "" || jr.ID == "" {
			return nil, fmt.Errorf("line %d: app, model and id are required", line)
		}
		src.records = append(src.records, field.MapRecord{
			App: jr.App, Model: jr.Model, ID: jr.ID, URL: jr.URL, Attrs: jr.Attrs,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return src, nil
}

// Len returns the number of records read.
func (s *JSONLSource) Len() int { return len(s.records) }

// Records calls fn for every record of modelKey in file order.
func (s *JSONLSource) Records(ctx context.Context, modelKey string, fn func(field.Record) error) error {
	for _, rec := range s.records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if field.ModelKey(rec, s.sep) != modelKey {
			continue
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
	return nil
}
