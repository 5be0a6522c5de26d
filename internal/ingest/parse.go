package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrMalformedFile is returned when a .json or .csv upload cannot be parsed.
var ErrMalformedFile = errors.New("malformed file")

// Record is one knowledge-base entry extracted from a file.
type Record struct {
	Content string
	// Source is the origin recorded in the entry itself, if any.
	Source string
}

// Field names recognised in structured uploads.
const (
	fieldContent = "content"
	fieldSummary = "Processed Summary"
	fieldPath    = "Full Path"
)

// Parse extracts records from a decoded file, choosing the format by the
// file extension. JSON files may hold one object or a list of them; CSV
// files need a header row. Any other extension is one plain-text record.
// Records with blank content are dropped.
func Parse(name, text string) ([]Record, error) {
	var (
		recs []Record
		err  error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		recs, err = parseJSON(text)
	case ".csv":
		recs, err = parseCSV(text)
	default:
		recs = []Record{{Content: text}}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedFile, filepath.Base(name), err)
	}

	out := recs[:0]
	for _, r := range recs {
		if strings.TrimSpace(r.Content) != "" {
			out = append(out, r)
		}
	}
	return out, nil
}

func parseJSON(text string) ([]Record, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	items, ok := v.([]any)
	if !ok {
		items = []any{v}
	}
	recs := make([]Record, 0, len(items))
	for _, item := range items {
		recs = append(recs, jsonRecord(item))
	}
	return recs, nil
}

// jsonRecord prefers a "content" field, then a processed summary with its
// source path, and otherwise keeps the whole item as compact JSON.
func jsonRecord(item any) Record {
	switch t := item.(type) {
	case string:
		return Record{Content: t}
	case map[string]any:
		if c, ok := t[fieldContent]; ok {
			if s, ok := c.(string); ok {
				return Record{Content: s}
			}
			return Record{Content: compact(c)}
		}
		if s, ok := t[fieldSummary].(string); ok {
			if p, ok := t[fieldPath].(string); ok && p != "" {
				return Record{Content: "Source: " + p + "\n\n" + s, Source: p}
			}
			return Record{Content: s}
		}
	}
	return Record{Content: compact(item)}
}

func compact(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprint(v)
	}
	return strings.TrimSpace(buf.String())
}

func parseCSV(text string) ([]Record, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	contentCol := -1
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if strings.EqualFold(header[i], fieldContent) {
			contentCol = i
		}
	}

	var recs []Record
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if contentCol >= 0 && contentCol < len(row) {
			recs = append(recs, Record{Content: row[contentCol]})
			continue
		}
		fields := make(map[string]string, len(row))
		for i, cell := range row {
			key := fmt.Sprintf("column_%d", i+1)
			if i < len(header) && header[i] != "" {
				key = header[i]
			}
			fields[key] = cell
		}
		recs = append(recs, Record{Content: compact(fields)})
	}
	return recs, nil
}
