// =============================================================================
// DTB to X Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which is the main command for
// converting DTB files. It orchestrates the conversion pipeline.
//
// COMMAND USAGE:
//   dtb2x convert [flags]
//
// FLAGS:
//   -i, --input    : Input file, "-" for stdin (repeatable, default stdin)
//   -o, --output   : Output file, "-" for stdout (default stdout)
//   --format       : csv, xlsx or xml (default: config, then output extension)
//   --loose        : Tolerate missing spaces and commas
//   --input-dir    : Convert every file in a directory
//   --pattern      : Glob pattern used with --input-dir
//   --output-dir   : Write generated output file names into a directory
//
// PROCESSING PIPELINE:
//   1. Plan one job per input (input path, output path, format)
//   2. For each job, one after another:
//      a. Open the input and a temporary output
//      b. Run the converter with the sink for the format
//      c. Move the output into place, or discard it on failure
//   3. Report the results
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/dtb2x/internal/config"
	"github.com/ginjaninja78/dtb2x/internal/converter"
	"github.com/ginjaninja78/dtb2x/internal/csvwriter"
	"github.com/ginjaninja78/dtb2x/internal/dtb"
	"github.com/ginjaninja78/dtb2x/internal/xlsxwriter"
	"github.com/ginjaninja78/dtb2x/internal/xmlwriter"
	"github.com/ginjaninja78/dtb2x/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// inputOptions selects the DTB inputs. Shared by convert and check.
type inputOptions struct {
	inputs   []string
	inputDir string
	pattern  string
	loose    bool
}

var convertOpts inputOptions

var (
	outputPath   string
	outputDir    string
	outputFormat string
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert DTB files to CSV, XLSX or XML",
	Long: `The convert command reads DTB input and writes one row per group, team
and player. Each row repeats the fields of the records that own it, so a
player row also carries its team and group.

The output format is taken from --format, then the configuration, then the
output file extension. CSV is the fallback.

The first invalid line stops the conversion of that file. Output files are
written under a temporary name and only appear once complete.`,
	Args: usageArgs(cobra.NoArgs),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Context(), cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the convert command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(convertCmd)

	addInputFlags(convertCmd, &convertOpts)

	convertCmd.Flags().StringVarP(&outputPath, "output", "o", "", `Output file, "-" for stdout (default stdout)`)
	convertCmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for generated output files")
	convertCmd.Flags().StringVar(&outputFormat, "format", "", "Output format: "+strings.Join(config.Formats, ", "))
}

// addInputFlags registers the input selection flags on cmd.
func addInputFlags(cmd *cobra.Command, opts *inputOptions) {
	cmd.Flags().StringArrayVarP(&opts.inputs, "input", "i", nil, `Input file, "-" for stdin (repeatable, default stdin)`)
	cmd.Flags().StringVar(&opts.inputDir, "input-dir", "", "Process every file in this directory")
	cmd.Flags().StringVar(&opts.pattern, "pattern", "*", "Glob pattern for files in --input-dir")
	cmd.Flags().BoolVar(&opts.loose, "loose", false, "Tolerate missing spaces and commas")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// job is the conversion of one input.
type job struct {
	input  string
	output string
	format string
}

// jobResult pairs a job with its outcome.
type jobResult struct {
	job
	converter.Result
}

// runConvert plans and runs the conversions.
func runConvert(ctx context.Context, cmd *cobra.Command) error {
	settings := *cfg
	if cmd.Flags().Changed("loose") {
		settings.Loose = convertOpts.loose
	}
	if outputFormat != "" {
		settings.Format = strings.ToLower(outputFormat)
		if !config.IsFormat(settings.Format) {
			return usageErrorf("unknown format %q (want one of %s)", outputFormat, strings.Join(config.Formats, ", "))
		}
	}

	inputs, err := resolveInputs(convertOpts)
	if err != nil {
		return err
	}

	jobs, err := planJobs(&settings, inputs, outputPath, outputDir)
	if err != nil {
		return err
	}

	conv := newConverter(&settings)
	results := runJobs(ctx, jobs, func(ctx context.Context, j job) converter.Result {
		return convertFile(ctx, conv, &settings, j, cmd.InOrStdin(), cmd.OutOrStdout())
	})

	return report(results, "converted")
}

// resolveInputs expands --input-dir and falls back to stdin.
func resolveInputs(opts inputOptions) ([]string, error) {
	inputs := append([]string(nil), opts.inputs...)

	if opts.inputDir != "" {
		found, err := utils.DiscoverInputFiles(opts.inputDir, opts.pattern)
		if err != nil {
			return nil, usageErrorf("%w", err)
		}
		if len(found) == 0 {
			return nil, usageErrorf("no files matching %q in %s", opts.pattern, opts.inputDir)
		}
		inputs = append(inputs, found...)
	}

	if len(inputs) == 0 {
		inputs = []string{utils.StdioPath}
	}
	return inputs, nil
}

// planJobs decides the output path and format of every input.
func planJobs(settings *config.Config, inputs []string, output, dir string) ([]job, error) {
	if output != "" && dir != "" {
		return nil, usageErrorf("--output and --output-dir cannot be combined")
	}
	if len(inputs) > 1 && dir == "" {
		return nil, usageErrorf("%d inputs need --output-dir", len(inputs))
	}

	if dir == "" {
		return []job{{input: inputs[0], output: output, format: config.ResolveFormat(settings.Format, output)}}, nil
	}

	format := config.ResolveFormat(settings.Format, "")
	jobs := make([]job, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		name := utils.GenerateOutputFileName(clock, settings.OutputNameFormat, input, format)
		path := filepath.Join(dir, name)
		if previous, ok := seen[path]; ok {
			return nil, usageErrorf("%s and %s would both be written to %s", previous, input, path)
		}
		seen[path] = input
		jobs = append(jobs, job{input: input, output: path, format: format})
	}
	return jobs, nil
}

// runJobs runs fn for every job in order. Once ctx is done the remaining jobs
// are not started and fail with the context error.
func runJobs(ctx context.Context, jobs []job, fn func(context.Context, job) converter.Result) []jobResult {
	results := make([]jobResult, 0, len(jobs))
	for _, j := range jobs {
		var result converter.Result
		if err := ctx.Err(); err != nil {
			result = converter.Result{Error: err}
		} else {
			result = fn(ctx, j)
		}
		results = append(results, jobResult{job: j, Result: result})
	}
	return results
}

// report logs every result. A single failure is returned as is, so its exit
// code reflects the cause.
func report(results []jobResult, verb string) error {
	var failed []jobResult
	for _, r := range results {
		event := logger.Info()
		if !r.Success {
			event = logger.Error().Err(r.Error)
			failed = append(failed, r)
		}
		event.Str("input", r.input).
			Str("output", r.output).
			Str("run_id", r.RunID).
			Int("records", r.Stats.Records()).
			Dur("elapsed", r.Stats.ProcessingTime).
			Msg(verb)
	}

	switch {
	case len(failed) == 0:
		return nil
	case len(results) == 1:
		return fmt.Errorf("%s: %w", displayName(failed[0].input), failed[0].Error)
	default:
		for _, r := range failed {
			if errors.Is(r.Error, context.Canceled) {
				return fmt.Errorf("%d of %d files failed: %w", len(failed), len(results), context.Canceled)
			}
		}
		return fmt.Errorf("%d of %d files failed, first %s: %w", len(failed), len(results), displayName(failed[0].input), failed[0].Error)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// newConverter creates the converter for settings.
func newConverter(settings *config.Config) *converter.Converter {
	mode := dtb.Strict
	if settings.Loose {
		mode = dtb.Loose
	}
	return converter.New(
		converter.WithMode(mode),
		converter.WithLogger(logger),
		converter.WithClock(clock),
	)
}

// convertFile converts a single input. The output only appears on success.
func convertFile(ctx context.Context, conv *converter.Converter, settings *config.Config, j job, stdin io.Reader, stdout io.Writer) converter.Result {
	in, err := utils.OpenInput(j.input, stdin)
	if err != nil {
		return converter.Result{Error: err}
	}
	defer in.Close()

	out, err := utils.CreateOutput(j.output, stdout)
	if err != nil {
		return converter.Result{Error: err}
	}

	sink, err := newSink(j.format, settings, out)
	if err != nil {
		out.Abort()
		return converter.Result{Error: err}
	}

	result := conv.Run(ctx, in, sink)
	if !result.Success {
		out.Abort()
		return result
	}

	if err := out.Commit(); err != nil {
		result.Success = false
		result.Error = err
	}
	return result
}

// newSink returns the output strategy for format.
func newSink(format string, settings *config.Config, w io.Writer) (converter.Sink, error) {
	switch format {
	case config.FormatCSV:
		return csvwriter.New(w, settings.CSV), nil
	case config.FormatXLSX:
		sink, err := xlsxwriter.New(w, settings.XLSX)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case config.FormatXML:
		return xmlwriter.New(w, settings.XML), nil
	default:
		return nil, usageErrorf("unknown format %q", format)
	}
}

func displayName(path string) string {
	if utils.IsStdio(path) {
		return "stdin"
	}
	return path
}
