// =============================================================================
// DTB to X Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the dtb2x CLI application. It initializes
// the Cobra CLI framework and delegates command execution to the cmd package.
//
// USAGE:
//   dtb2x convert       - Convert DTB files to CSV, XLSX or XML
//   dtb2x check         - Validate DTB files without converting them
//   dtb2x version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/                 : CLI command definitions (Cobra)
//   - internal/dtb         : DTB records and the line reader
//   - internal/converter   : Conversion driver and the output Sink interface
//   - internal/csvwriter   : CSV sink
//   - internal/xlsxwriter  : XLSX sink
//   - internal/xmlwriter   : XML sink
//   - internal/config      : YAML/TOML/environment configuration
//   - pkg/utils            : Input/output file handling
//
// =============================================================================

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/ginjaninja78/dtb2x/cmd"
)

// main runs the CLI. Ctrl+C cancels a running conversion and exits with 130.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Execute(ctx)
	stop()
	os.Exit(code)
}
