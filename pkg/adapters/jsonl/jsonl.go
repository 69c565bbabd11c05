// Package jsonl reads log lines stored as one JSON object per line.
//
// A record carries the reserved variables as top-level fields and the
// free-form variables under "vars":
//
//	{"keyword":"send","component":"client","host":"h1","target":"api","thread":"7",
//	 "time":"2024-05-01T10:00:00.5Z","request":"r1","vars":{"tid":"42"}}
//
// Either "time" (RFC 3339) or "seconds" (epoch seconds) must be present.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/stitch/pkg/adapters/memory"
	"github.com/aretw0/stitch/pkg/domain"
)

// MaxLineSize bounds the length of one record.
const MaxLineSize = 1 << 20

// ErrMissingField is wrapped by decode errors for records lacking a required field.
var ErrMissingField = errors.New("missing required field")

type record struct {
	Keyword   string         `json:"keyword"`
	Component string         `json:"component"`
	Target    string         `json:"target"`
	Host      string         `json:"host"`
	Thread    string         `json:"thread"`
	Request   string         `json:"request"`
	Time      string         `json:"time"`
	Seconds   *float64       `json:"seconds"`
	Vars      map[string]any `json:"vars"`
}

// Decode parses every record of r. Blank lines are skipped.
func Decode(r io.Reader) ([]*domain.Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var lines []*domain.Line
	number := 0
	for scanner.Scan() {
		number++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		line, err := decodeRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", number, err)
		}
		line.Number = number
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read lines: %w", err)
	}
	return lines, nil
}

func decodeRecord(raw []byte) (*domain.Line, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var rec record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}

	for name, v := range map[string]string{
		"keyword":   rec.Keyword,
		"component": rec.Component,
		"host":      rec.Host,
		"target":    rec.Target,
		"thread":    rec.Thread,
	} {
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	line := &domain.Line{
		Reserved: domain.Reserved{
			Component: rec.Component,
			Target:    rec.Target,
			Host:      rec.Host,
			Thread:    rec.Thread,
			Request:   rec.Request,
		},
		Keyword: rec.Keyword,
	}

	switch {
	case rec.Time != "":
		ts, err := time.Parse(time.RFC3339Nano, rec.Time)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q: %w", rec.Time, err)
		}
		line.Time = ts
		line.Seconds = float64(ts.UnixNano()) / 1e9
		if rec.Seconds != nil {
			line.Seconds = *rec.Seconds
		}
	case rec.Seconds != nil:
		line.Seconds = *rec.Seconds
		line.Time = time.Unix(0, int64(*rec.Seconds*1e9)).UTC()
	default:
		return nil, fmt.Errorf("%w: time or seconds", ErrMissingField)
	}

	if len(rec.Vars) > 0 {
		line.Vars = make(map[string]string, len(rec.Vars))
		for k, v := range rec.Vars {
			if v == nil {
				continue
			}
			line.Vars[k] = fmt.Sprint(v)
		}
	}
	return line, nil
}

// Open decodes every file and groups the lines into an in-memory source.
func Open(paths ...string) (*memory.Source, error) {
	var all []*domain.Line
	for _, path := range paths {
		lines, err := readFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, lines...)
	}
	return memory.NewSource(all...), nil
}

func readFile(path string) ([]*domain.Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}
