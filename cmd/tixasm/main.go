// Command tixasm assembles Z80 source text into a TEXT-section byte image.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lePerdu/tixasm/pkg/assembler"
	"github.com/lePerdu/tixasm/pkg/parser"
	"github.com/spf13/cobra"
)

func main() {
	var input string
	var output string
	var format string
	var diagFormat string
	var verbose bool

	rootCmd := &cobra.Command{
		Use:          "tixasm",
		Short:        "Assemble Z80 source into a TEXT-section byte image",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(input, output, format, diagFormat, verbose)
		},
	}
	rootCmd.Flags().StringVar(&input, "input", "", "Source file to assemble (default: stdin)")
	rootCmd.Flags().StringVar(&output, "output", "", "Output file for the assembled image (default: stdout)")
	rootCmd.Flags().StringVar(&format, "format", "hex", "Output format: hex or bin")
	rootCmd.Flags().StringVar(&diagFormat, "diagnostics-format", "text", "Diagnostics format: text or json")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Echo section sizes and relocation counts to stderr")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(input, output, format, diagFormat string, verbose bool) error {
	src, name, err := openInput(input)
	if err != nil {
		return err
	}
	if c, ok := src.(io.Closer); ok {
		defer c.Close()
	}

	switch format {
	case "hex", "bin":
	default:
		return fmt.Errorf("unknown --format %q: want hex or bin", format)
	}
	switch diagFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown --diagnostics-format %q: want text or json", diagFormat)
	}

	state := assembler.New()
	p := parser.New(state)
	asmErr := p.Parse(src, name)

	if verbose {
		fmt.Fprintf(os.Stderr, "text: %d bytes, data: %d bytes, relocations: %d\n",
			len(state.TextBytes()), len(state.DataBytes()), state.RelocationCount())
	}

	if len(state.Diagnostics()) > 0 {
		if err := writeDiagnostics(os.Stderr, state.Diagnostics(), diagFormat); err != nil {
			return err
		}
	}

	if asmErr != nil || state.Failed() {
		return fmt.Errorf("assembly failed with %d diagnostic(s)", len(state.Diagnostics()))
	}

	dst, err := openOutput(output)
	if err != nil {
		return err
	}
	if c, ok := dst.(io.Closer); ok {
		defer c.Close()
	}

	return writeImage(dst, state.TextBytes(), format)
}

func openInput(path string) (io.Reader, string, error) {
	if path == "" {
		return os.Stdin, "<stdin>", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening input: %w", err)
	}
	return f, path, nil
}

func openOutput(path string) (io.Writer, error) {
	if path == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	return f, nil
}

// writeImage writes the TEXT image either as space-separated hex byte pairs
// followed by a newline, or as the raw bytes, per --format.
func writeImage(w io.Writer, text []byte, format string) error {
	if format == "bin" {
		_, err := w.Write(text)
		return err
	}
	for i, b := range text {
		if i > 0 {
			if _, err := fmt.Fprint(w, " "); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%02X", b); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

func writeDiagnostics(w io.Writer, diags assembler.Diagnostics, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(diags)
	}
	for _, d := range diags {
		fmt.Fprintln(w, d.String())
	}
	return nil
}
