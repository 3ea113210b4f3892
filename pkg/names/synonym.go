package names

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
)

// ErrMalformedSynonymEntry is matched by every *MalformedEntryError.
var ErrMalformedSynonymEntry = errors.New("malformed synonym entry")

// MalformedEntryError describes a synonym line that does not split into
// exactly an alias and a canonical name.
type MalformedEntryError struct {
	Source string
	Line   int
	Text   string
}

func (e *MalformedEntryError) Error() string {
	return fmt.Sprintf("%s:%d: %s %q: expected \"alias canonical\"", e.Source, e.Line, ErrMalformedSynonymEntry, e.Text)
}

func (e *MalformedEntryError) Unwrap() error {
	return ErrMalformedSynonymEntry
}

// Synonyms maps aliases to canonical names. The zero value and nil resolve
// every name to itself.
type Synonyms struct {
	canonical map[string]string

	// Skipped lists the malformed lines ParseSynonyms dropped.
	Skipped []*MalformedEntryError
}

// SynonymOptions controls ParseSynonyms. With Strict set the first
// malformed line aborts parsing.
type SynonymOptions struct {
	Source string
	Strict bool
}

// NewSynonyms builds a synonym table from alias -> canonical pairs.
func NewSynonyms(pairs map[string]string) *Synonyms {
	s := &Synonyms{canonical: make(map[string]string, len(pairs))}
	for alias, canonical := range pairs {
		s.canonical[util.NormalizeText(alias)] = util.NormalizeText(canonical)
	}
	return s
}

// ParseSynonyms reads newline-delimited "alias canonical" pairs. Blank lines
// are ignored. A repeated alias keeps its last mapping.
func ParseSynonyms(r io.Reader, opts SynonymOptions) (*Synonyms, error) {
	s := &Synonyms{canonical: make(map[string]string)}
	scanner := newLineScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(util.NormalizeText(scanner.Text()))
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			entryErr := &MalformedEntryError{Source: opts.Source, Line: lineNo, Text: line}
			if opts.Strict {
				return nil, entryErr
			}
			logger.Warn("[Names] Skipping malformed synonym entry", "source", opts.Source, "line", lineNo, "text", line)
			s.Skipped = append(s.Skipped, entryErr)
			continue
		}

		alias, canonical := fields[0], fields[1]
		if prev, ok := s.canonical[alias]; ok && prev != canonical {
			logger.Warn("[Names] Alias mapped twice, keeping last", "source", opts.Source, "line", lineNo, "alias", alias, "previous", prev, "canonical", canonical)
		}
		s.canonical[alias] = canonical
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read synonym table %s: %w", opts.Source, err)
	}

	logger.Debug("[Names] Synonyms loaded", "source", opts.Source, "aliases", len(s.canonical), "skipped", len(s.Skipped))
	return s, nil
}

// Resolve returns the canonical form of name, or name itself when it is not
// an alias.
func (s *Synonyms) Resolve(name string) string {
	if s == nil {
		return name
	}
	if canonical, ok := s.canonical[name]; ok {
		return canonical
	}
	return name
}

func (s *Synonyms) Len() int {
	if s == nil {
		return 0
	}
	return len(s.canonical)
}
