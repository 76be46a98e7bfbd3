// =============================================================================
// DTB to X Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Opening inputs (files or standard input)
//   - Creating outputs that only appear once complete
//   - Input file discovery for batch conversion
//   - Output file naming
//
// OUTPUT STRATEGY:
//   - Output is written to a temporary file next to the destination
//   - Commit renames it into place after a successful conversion
//   - Abort removes it, so a failed conversion never leaves a partial file
//   - "-" or an empty path means standard input / standard output
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// StdioPath selects standard input or output.
const StdioPath = "-"

// IsStdio reports whether path refers to standard input or output.
func IsStdio(path string) bool {
	return path == "" || path == StdioPath
}

// =============================================================================
// INPUT
// =============================================================================

// OpenInput opens path for reading. Standard input (stdin) is used for "" and
// "-"; closing it is a no-op.
func OpenInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if IsStdio(path) {
		return io.NopCloser(stdin), nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return file, nil
}

// DiscoverInputFiles returns the regular files in dir matching the glob
// pattern, sorted by name.
//
// PARAMETERS:
//   - dir: The directory to scan.
//   - pattern: A glob pattern (e.g., "*.txt"). If empty, every file matches.
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read or the pattern is malformed.
func DiscoverInputFiles(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*"
	}

	files, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	// Filter out directories.
	var result []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			result = append(result, file)
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// Output is a destination that becomes visible only on Commit.
type Output struct {
	io.Writer

	file  *os.File
	final string
	done  bool
}

// CreateOutput prepares path for writing. Standard output (stdout) is used for
// "" and "-", in which case Commit and Abort do nothing.
func CreateOutput(path string, stdout io.Writer) (*Output, error) {
	if IsStdio(path) {
		return &Output{Writer: stdout}, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &Output{Writer: file, file: file, final: path}, nil
}

// Path returns the destination path, or "-" for standard output.
func (o *Output) Path() string {
	if o.file == nil {
		return StdioPath
	}
	return o.final
}

// Commit moves the finished output into place.
func (o *Output) Commit() error {
	if o.file == nil || o.done {
		return nil
	}
	o.done = true

	if err := o.file.Sync(); err != nil {
		o.discard()
		return fmt.Errorf("failed to sync output file: %w", err)
	}
	if err := o.file.Close(); err != nil {
		os.Remove(o.file.Name())
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(o.file.Name(), o.final); err != nil {
		os.Remove(o.file.Name())
		return fmt.Errorf("failed to move output file into place: %w", err)
	}
	return nil
}

// Abort discards the output. It is safe to call after Commit.
func (o *Output) Abort() {
	if o.file == nil || o.done {
		return
	}
	o.done = true
	o.discard()
}

func (o *Output) discard() {
	o.file.Close()
	os.Remove(o.file.Name())
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - clock: The source of the current time.
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {original}  - Input file name (without extension)
//               {ext}       - Extension of the output format
//   - inputPath: The input file; "-" names it "stdin".
//   - ext: The output extension without the dot (e.g., "xlsx").
//
// RETURNS:
//   - The generated file name. It always ends with "." + ext.
//
// EXAMPLE:
//   format: "{original}_{timestamp}.{ext}"
//   inputPath: "data/druzstva.txt", ext: "csv"
//   output: "druzstva_20240115_143022.csv"
func GenerateOutputFileName(clock clockwork.Clock, format, inputPath, ext string) string {
	now := clock.Now()

	original := "stdin"
	if !IsStdio(inputPath) {
		base := filepath.Base(inputPath)
		original = strings.TrimSuffix(base, filepath.Ext(base))
	}

	replacements := []string{
		"{uuid}", uuid.New().String(),
		"{timestamp}", now.Format("20060102_150405"),
		"{date}", now.Format("20060102"),
		"{time}", now.Format("150405"),
		"{original}", original,
		"{ext}", ext,
	}
	result := strings.NewReplacer(replacements...).Replace(format)

	// Ensure the extension.
	if !strings.HasSuffix(strings.ToLower(result), "."+strings.ToLower(ext)) {
		result += "." + ext
	}

	return result
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}
