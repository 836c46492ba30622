package content

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
)

type format int

const (
	formatJSON format = iota
	formatCSV
)

func formatFor(name string) format {
	if strings.EqualFold(path.Ext(name), ".csv") {
		return formatCSV
	}
	return formatJSON
}

func decodeEntries(r io.Reader, f format) ([]Entry, error) {
	if f == formatCSV {
		return decodeCSV(r)
	}
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return entries, nil
}

// decodeCSV reads a header row naming id,title,question,answer,tags. Tags are
// separated by '|' or ';'.
func decodeCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	cols := map[string]int{}
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("decode csv: missing id column")
	}
	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, Entry{
			ID:       field(row, "id"),
			Title:    field(row, "title"),
			Question: field(row, "question"),
			Answer:   field(row, "answer"),
			Tags: strings.FieldsFunc(field(row, "tags"), func(r rune) bool {
				return r == '|' || r == ';'
			}),
		})
	}
	return entries, nil
}
