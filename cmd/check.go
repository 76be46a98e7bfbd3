// =============================================================================
// DTB to X Converter - Check Command
// =============================================================================
//
// This file defines the 'check' command, which reads DTB input without
// writing any output. It reports whether every line is valid and how many
// records of each kind were found.
//
// COMMAND USAGE:
//   dtb2x check [flags]
//
// OUTPUT (stdout, one line per input):
//   soupiska.txt: ok, 3 groups, 7 teams, 84 players
//   broken.txt: line 12: unknown line type (missing comma after name): "..."
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/ginjaninja78/dtb2x/internal/converter"
	"github.com/ginjaninja78/dtb2x/pkg/utils"
	"github.com/spf13/cobra"
)

var checkOpts inputOptions

// checkCmd represents the 'check' command.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate DTB files without converting them",
	Long: `The check command parses DTB input exactly like convert, in strict mode
unless --loose is given, but discards the rows. Use it to find the first
invalid line of a file before converting it.`,
	Args: usageArgs(cobra.NoArgs),

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(cmd.Context(), cmd)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addInputFlags(checkCmd, &checkOpts)
}

// runCheck validates every input and prints one summary line per input.
func runCheck(ctx context.Context, cmd *cobra.Command) error {
	settings := *cfg
	if cmd.Flags().Changed("loose") {
		settings.Loose = checkOpts.loose
	}

	inputs, err := resolveInputs(checkOpts)
	if err != nil {
		return err
	}

	jobs := make([]job, len(inputs))
	for i, input := range inputs {
		jobs[i] = job{input: input}
	}

	conv := newConverter(&settings)
	results := runJobs(ctx, jobs, func(ctx context.Context, j job) converter.Result {
		in, err := utils.OpenInput(j.input, cmd.InOrStdin())
		if err != nil {
			return converter.Result{Error: err}
		}
		defer in.Close()
		return conv.Run(ctx, in, converter.Discard)
	})

	for _, r := range results {
		printCheck(cmd.OutOrStdout(), r)
	}

	return report(results, "checked")
}

// printCheck writes the summary line for one input.
func printCheck(w io.Writer, r jobResult) {
	if !r.Success {
		fmt.Fprintf(w, "%s: %v\n", displayName(r.input), r.Error)
		return
	}
	fmt.Fprintf(w, "%s: ok, %d groups, %d teams, %d players\n",
		displayName(r.input), r.Stats.Groups, r.Stats.Teams, r.Stats.Players)
}
