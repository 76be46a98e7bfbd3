// =============================================================================
// DTB to X Converter - Line Scanner
// =============================================================================
//
// LineScanner splits an input stream into DTB lines one at a time, without
// loading the whole file into memory.
//
// USAGE:
//   lines := NewLineScanner(input)
//   for lines.Next() {
//       line := lines.Line() // always ends with "\n"
//       // Process the line...
//   }
//
//   if err := lines.Err(); err != nil {
//       return err
//   }
//
// NORMALIZATION:
//   - "\r\n" line endings become "\n"
//   - A final line without a terminator gets "\n" appended
//   - A UTF-8 byte order mark at the start of the stream is dropped
//
// =============================================================================

package converter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const byteOrderMark = "\uFEFF"

// LineScanner reads newline terminated lines from a stream.
type LineScanner struct {
	reader     *bufio.Reader
	line       string
	lineNumber int
	err        error
	done       bool
}

// NewLineScanner creates a LineScanner reading from r.
func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{reader: bufio.NewReader(r)}
}

// Next advances to the next line. Returns false when there are no more lines
// or a read error occurred.
func (s *LineScanner) Next() bool {
	if s.done {
		return false
	}

	line, err := s.reader.ReadString('\n')
	if err != nil {
		s.done = true
		if !errors.Is(err, io.EOF) {
			s.err = fmt.Errorf("error reading line %d: %w", s.lineNumber+1, err)
			return false
		}
		if line == "" {
			return false
		}
	}

	s.lineNumber++
	if s.lineNumber == 1 {
		line = strings.TrimPrefix(line, byteOrderMark)
	}

	switch {
	case strings.HasSuffix(line, "\r\n"):
		line = line[:len(line)-2] + "\n"
	case !strings.HasSuffix(line, "\n"):
		line += "\n"
	}

	s.line = line
	return true
}

// Line returns the current line, terminated by "\n".
func (s *LineScanner) Line() string {
	return s.line
}

// LineNumber returns the current line number (1-indexed).
func (s *LineScanner) LineNumber() int {
	return s.lineNumber
}

// Err returns any error that occurred while reading.
func (s *LineScanner) Err() error {
	return s.err
}
