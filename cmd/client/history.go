package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// History keeps executed statements. On disk every statement is one line:
// whitespace outside quoted literals is folded, and line breaks inside them
// are written as \n (a literal backslash as \\).
type History struct {
	path    string
	entries []string
}

func NewHistory(path string) *History {
	return &History{path: path}
}

// Load reads up to limit of the newest entries. Lines that do not decode to a
// complete statement are skipped.
func (h *History) Load(limit int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		stmt := unescapeEntry(strings.TrimSpace(sc.Text()))
		if !statementComplete(stmt) {
			continue
		}
		h.push(stmt)
		if limit > 0 && len(h.entries) > limit {
			h.entries = h.entries[len(h.entries)-limit:]
		}
	}
	return sc.Err()
}

// Append records stmt and writes it to the history file. A statement equal to
// the previous entry is not recorded twice.
func (h *History) Append(stmt string) error {
	stmt = compactStatement(stmt)
	if stmt == "" || !h.push(stmt) || h.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = fmt.Fprintln(f, escapeEntry(stmt))
	return err
}

func (h *History) push(stmt string) bool {
	if n := len(h.entries); n > 0 && h.entries[n-1] == stmt {
		return false
	}
	h.entries = append(h.entries, stmt)
	return true
}

func (h *History) Entries() []string { return h.entries }

// Print writes the last n entries, numbered. Continuation lines of a multi-line
// literal are indented under the statement. n <= 0 prints everything.
func (h *History) Print(w io.Writer, last int) {
	if last <= 0 || last > len(h.entries) {
		last = len(h.entries)
	}
	for i := len(h.entries) - last; i < len(h.entries); i++ {
		lines := strings.Split(h.entries[i], "\n")
		fmt.Fprintf(w, "%5d  %s\n", i+1, lines[0])
		for _, l := range lines[1:] {
			fmt.Fprintf(w, "       %s\n", l)
		}
	}
}

// compactStatement folds runs of whitespace outside quoted literals into one
// space. Quoted literals are kept byte for byte.
func compactStatement(s string) string {
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	inQuote := false
	space := false
	for _, r := range s {
		if r == '\'' {
			inQuote = !inQuote
		}
		if !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r') {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

var entryEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)

func escapeEntry(stmt string) string { return entryEscaper.Replace(stmt) }

func unescapeEntry(line string) string {
	if !strings.Contains(line, `\`) {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != '\\' || i+1 == len(line) {
			b.WriteByte(c)
			continue
		}
		i++
		switch line[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			b.WriteByte(line[i])
		}
	}
	return b.String()
}

// statementComplete reports whether buf holds a ';' outside single quotes.
// A doubled quote inside a string toggles twice, so it needs no special case.
func statementComplete(buf string) bool {
	inQuote := false
	for _, r := range buf {
		switch {
		case r == '\'':
			inQuote = !inQuote
		case r == ';' && !inQuote:
			return true
		}
	}
	return false
}
