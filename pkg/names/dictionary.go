package names

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OFFIS-RIT/charnet/internal/util"
	"github.com/OFFIS-RIT/charnet/pkg/logger"
)

// Dictionary is the immutable set of name surface forms accepted as
// characters. Names keep their load order so tokenizers can be primed
// deterministically.
type Dictionary struct {
	names []string
	set   map[string]struct{}
}

// DictionaryOptions controls ParseDictionary.
//
// Tag restricts entries that carry a part-of-speech column to that tag
// (jieba uses "nr" for person names). Entries without a tag column are
// always kept. Source names the input in log output.
type DictionaryOptions struct {
	Source string
	Tag    string
}

// NewDictionary builds a dictionary from literal names. Empty and duplicate
// names are ignored.
func NewDictionary(names ...string) *Dictionary {
	d := &Dictionary{
		names: make([]string, 0, len(names)),
		set:   make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		d.add(util.NormalizeText(strings.TrimSpace(n)))
	}
	return d
}

func (d *Dictionary) add(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := d.set[name]; ok {
		return false
	}
	d.set[name] = struct{}{}
	d.names = append(d.names, name)
	return true
}

// ParseDictionary reads a newline-delimited name dictionary in the jieba
// user-dictionary format: "name", "name freq" or "name freq tag".
//
// Lines that do not fit that shape (headers, comments, prose, a non-numeric
// frequency) are boilerplate and are dropped. Only read failures are errors.
func ParseDictionary(r io.Reader, opts DictionaryOptions) (*Dictionary, error) {
	d := NewDictionary()
	scanner := newLineScanner(r)

	lineNo, skipped := 0, 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(util.NormalizeText(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, ok := parseDictionaryLine(line, opts.Tag)
		if !ok {
			skipped++
			logger.Debug("[Names] Skipping dictionary line", "source", opts.Source, "line", lineNo, "text", line)
			continue
		}
		d.add(name)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read name dictionary %s: %w", opts.Source, err)
	}

	logger.Debug("[Names] Dictionary loaded", "source", opts.Source, "names", d.Len(), "skipped", skipped)
	return d, nil
}

func parseDictionaryLine(line string, tag string) (string, bool) {
	fields := strings.Fields(line)
	switch len(fields) {
	case 1:
		return fields[0], true
	case 2:
		if _, err := strconv.Atoi(fields[1]); err != nil {
			return "", false
		}
		return fields[0], true
	case 3:
		if _, err := strconv.Atoi(fields[1]); err != nil {
			return "", false
		}
		if tag != "" && fields[2] != tag {
			return "", false
		}
		return fields[0], true
	default:
		return "", false
	}
}

// Contains reports whether name is one of the dictionary's surface forms.
func (d *Dictionary) Contains(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.set[name]
	return ok
}

// Names returns a copy of the surface forms in load order.
func (d *Dictionary) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

func (d *Dictionary) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
