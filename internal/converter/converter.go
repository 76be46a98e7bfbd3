// =============================================================================
// DTB to X Converter - Converter Module
// =============================================================================
//
// This module contains the conversion driver. It feeds the lines of a DTB
// input stream to a dtb.Reader and forwards every record to an output Sink.
//
// CONVERSION PIPELINE:
//   1. Write the header row (Group, Team and Player labels)
//   2. For each input line, in document order:
//      a. Read a record (the first invalid line aborts the run)
//      b. Flatten it to a row and pad it to the header width
//      c. Hand the record and row to the sink
//   3. Close the sink (flushes CSV, saves XLSX, closes XML elements)
//
// The output format is a strategy: the Sink passed to Run. The converter
// itself never looks at the format.
//
// CONCURRENCY:
//   A run is sequential. A Converter holds no per-run state, so one value may
//   drive several independent runs.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/ginjaninja78/dtb2x/internal/dtb"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// =============================================================================
// SINK INTERFACE
// =============================================================================

// Sink receives the converted rows.
type Sink interface {
	// WriteHeader is called once, before any record.
	WriteHeader(header []string) error

	// WriteRecord is called for every record. cells is rec.Row() padded with
	// empty cells up to the header width.
	WriteRecord(rec dtb.Record, cells []string) error

	// Close finalizes the output. It does not close the underlying writer.
	Close() error
}

// Discard is a Sink that drops everything. It is used to check input without
// producing output.
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) WriteHeader([]string) error              { return nil }
func (discardSink) WriteRecord(dtb.Record, []string) error { return nil }
func (discardSink) Close() error                            { return nil }

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of converting a single input stream.
type Result struct {
	// RunID identifies the run in log lines.
	RunID string

	// Success indicates whether the conversion was successful.
	Success bool

	// Error contains the error if the conversion failed.
	// Invalid input is reported as a *LineError wrapping a
	// *dtb.InvalidInputError.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// LinesRead is the number of input lines consumed.
	LinesRead int

	// Groups, Teams and Players count the records written per kind.
	Groups  int
	Teams   int
	Players int

	// ProcessingTime is the time taken to process the input.
	ProcessingTime time.Duration
}

// Records returns the total number of records written.
func (s ProcessingStats) Records() int {
	return s.Groups + s.Teams + s.Players
}

// LineError attaches the input line number to a read failure.
type LineError struct {
	// LineNumber is the 1-indexed number of the offending line.
	LineNumber int

	// Err is the underlying error, usually a *dtb.InvalidInputError.
	Err error
}

// Error implements the error interface.
func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.LineNumber, e.Err)
}

// Unwrap returns the underlying error.
func (e *LineError) Unwrap() error {
	return e.Err
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter drives DTB conversions.
type Converter struct {
	mode   dtb.Mode
	logger zerolog.Logger
	clock  clockwork.Clock
}

// Option configures a Converter.
type Option func(*Converter)

// WithMode selects strict or loose parsing. Default: dtb.Strict.
func WithMode(mode dtb.Mode) Option {
	return func(c *Converter) { c.mode = mode }
}

// WithLogger sets the logger. Default: no logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Converter) { c.logger = logger }
}

// WithClock sets the clock used for timing. Default: the real clock.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Converter) { c.clock = clock }
}

// New creates a new Converter.
func New(opts ...Option) *Converter {
	c := &Converter{
		mode:   dtb.Strict,
		logger: zerolog.Nop(),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run converts the DTB text read from input into rows written to sink.
//
// PARAMETERS:
//   - ctx: Checked between lines; cancelling it aborts the run.
//   - input: The DTB text. Run does not close it.
//   - sink: The output strategy. Run always calls sink.Close.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run(ctx context.Context, input io.Reader, sink Sink) Result {
	start := c.clock.Now()
	result := Result{RunID: uuid.New().String()}
	logger := c.logger.With().Str("run_id", result.RunID).Logger()

	logger.Info().Stringer("mode", c.mode).Msg("starting conversion")

	err := c.convert(ctx, input, sink, logger, &result.Stats)
	if closeErr := sink.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to finalize output: %w", closeErr)
	}

	result.Stats.ProcessingTime = c.clock.Since(start)

	if err != nil {
		result.Error = err
		logger.Error().Err(err).Int("lines", result.Stats.LinesRead).Msg("conversion failed")
		return result
	}

	result.Success = true
	logger.Info().
		Int("lines", result.Stats.LinesRead).
		Int("groups", result.Stats.Groups).
		Int("teams", result.Stats.Teams).
		Int("players", result.Stats.Players).
		Dur("elapsed", result.Stats.ProcessingTime).
		Msg("conversion complete")
	return result
}

// convert does the work of Run up to, but not including, closing the sink.
func (c *Converter) convert(ctx context.Context, input io.Reader, sink Sink, logger zerolog.Logger, stats *ProcessingStats) error {
	header := dtb.Header()
	if err := sink.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	reader := dtb.NewReader(dtb.WithLogger(logger))
	lines := NewLineScanner(input)

	for lines.Next() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("conversion interrupted: %w", err)
		}
		stats.LinesRead++

		rec, err := reader.Read(lines.Line(), c.mode)
		if err != nil {
			return &LineError{LineNumber: lines.LineNumber(), Err: err}
		}

		if err := sink.WriteRecord(rec, PadRow(rec.Row(), len(header))); err != nil {
			return fmt.Errorf("failed to write line %d: %w", lines.LineNumber(), err)
		}

		switch rec.Kind() {
		case dtb.KindGroup:
			stats.Groups++
		case dtb.KindTeam:
			stats.Teams++
		case dtb.KindPlayer:
			stats.Players++
		}
	}

	if err := lines.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// PadRow appends empty cells to row until it has width cells, so every data
// row has as many columns as the header.
func PadRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
