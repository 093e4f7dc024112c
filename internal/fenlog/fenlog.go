// Package fenlog appends matched positions to flat text files.
//
// Files are opened, written and closed on every append, so records from
// earlier runs are never truncated.
package fenlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyFEN is returned when appending an entry without a position.
var ErrEmptyFEN = errors.New("fenlog: empty FEN")

// Entry is a single recorded position.
type Entry struct {
	FEN string `json:"FEN"`

	// Score is the formatted engine evaluation, if one was computed.
	Score string `json:"score,omitempty"`
}

// Writer appends entries to a log.
type Writer interface {
	Append(e Entry) error
}

// Plain writes one FEN per line.
type Plain struct {
	path string
}

// Compile-time check that Plain implements Writer.
var _ Writer = (*Plain)(nil)

// NewPlain returns a plain writer for path. The parent directory must exist.
func NewPlain(path string) *Plain {
	return &Plain{path: path}
}

// Append writes e.FEN followed by a newline. The score is not recorded.
func (p *Plain) Append(e Entry) error {
	if e.FEN == "" {
		return ErrEmptyFEN
	}
	return appendLine(p.path, []byte(e.FEN))
}

// Path returns the output file path.
func (p *Plain) Path() string {
	return p.path
}

// JSONL writes one JSON object per line with FEN and score fields.
type JSONL struct {
	path string
}

// Compile-time check that JSONL implements Writer.
var _ Writer = (*JSONL)(nil)

// NewJSONL returns a JSON-lines writer for path.
func NewJSONL(path string) *JSONL {
	return &JSONL{path: path}
}

// Append writes e as a JSON line.
func (j *JSONL) Append(e Entry) error {
	if e.FEN == "" {
		return ErrEmptyFEN
	}
	line, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	return appendLine(j.path, line)
}

// Path returns the output file path.
func (j *JSONL) Path() string {
	return j.path
}

func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening output file: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output file: %w", err)
	}
	return nil
}

// ReadPlain returns the non-empty lines of a plain log. JSON lines are decoded
// and their FEN field returned, so either format can be read back.
func ReadPlain(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening output file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "{") {
			var e Entry
			if err := json.Unmarshal([]byte(line), &e); err != nil {
				return nil, fmt.Errorf("parsing line %d: %w", len(entries)+1, err)
			}
			entries = append(entries, e)
			continue
		}
		entries = append(entries, Entry{FEN: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading output file: %w", err)
	}
	return entries, nil
}
