// relc is the command-line shell around the compiler core: file discovery,
// flag parsing, and colored stage-labeled diagnostics. Everything of
// substance lives under internal/.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relc-lang/relc/internal/compiler"
	"github.com/relc-lang/relc/internal/errors"
	"github.com/relc-lang/relc/internal/resolver"
)

var (
	// Version info - set by ldflags during build
	Version = "dev"

	// Color output
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	root := &cobra.Command{
		Use:     "relc",
		Short:   "relc compiles .rel schema definitions to reliant-type validator modules",
		Version: Version,
	}
	root.AddCommand(compileCmd(), checkCmd(), resolveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}
}

func compileCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "compile <entry.rel>",
		Short: "Compile an entry file and emit the validator module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry := args[0]
			cfg, _, err := compiler.FindConfig(filepath.Dir(entry))
			if err != nil {
				return err
			}
			if out == "" {
				out = cfg.Out
			}

			result, errs := compiler.Compile(entry, resolver.FileLoader{})
			if len(errs) > 0 {
				printReports(errs)
				os.Exit(1)
			}
			for _, line := range result.Prints {
				fmt.Fprintf(os.Stderr, "%s %s\n", cyan("print:"), line)
			}
			if out == "" {
				fmt.Print(result.Output)
			} else {
				if err := os.WriteFile(out, []byte(result.Output), 0644); err != nil {
					return err
				}
				fmt.Fprintf(os.Stderr, "%s %s -> %s\n", green("✓"), errors.StageSuccess, bold(out))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write emitted module to file instead of stdout")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <entry.rel>",
		Short: "Resolve and validate an entry file without emitting output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			merged, errs := compiler.Resolve(args[0], resolver.FileLoader{})
			if len(errs) > 0 {
				printReports(errs)
				os.Exit(1)
			}
			if errs := compiler.Validate(merged); len(errs) > 0 {
				printReports(errs)
				os.Exit(1)
			}
			fmt.Printf("%s %s\n", green("✓"), "no errors found")
			return nil
		},
	}
}

func resolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <entry.rel>",
		Short: "Print an entry file's dependency order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := resolver.New(resolver.FileLoader{})
			_, order, errs := r.Resolve(args[0])
			if len(errs) > 0 {
				printReports(errs)
				os.Exit(1)
			}
			for i, path := range order {
				fmt.Printf("%2d  %s\n", i+1, path)
			}
			return nil
		},
	}
}

// printReports renders an error batch with its stage label
// ("tokenization failed", "parsing failed", ...). All reports in a batch
// come from the stage that halted the pipeline, so the label is taken from
// the first.
func printReports(reps []*errors.Report) {
	if len(reps) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", red("✗"), bold(errors.StageLabel(reps[0].Phase)))
	for _, r := range reps {
		loc := ""
		if r.Pos != nil {
			loc = r.Pos.String() + ": "
		}
		fmt.Fprintf(os.Stderr, "  %s %s%s\n", yellow("["+r.Code+"]"), loc, r.Message)
	}
}
