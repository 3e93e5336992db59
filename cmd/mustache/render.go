package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelta-io/mustache"
	"github.com/kelta-io/mustache/v1api"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		dataPath     string
		partialsPath string
		delims       string
		escape       string
		budget       int64
		outPath      string
		strict       bool
		v1Compat     bool
	)

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a mustache template against a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading template: %w", err)
			}

			var data interface{} = map[string]interface{}{}
			if dataPath != "" {
				data, err = loadData(dataPath)
				if err != nil {
					return err
				}
			}

			if v1Compat {
				return runV1Compat(cmd, string(src), partialsPath, escape, data, outPath)
			}

			mode, err := parseEscapeMode(escape)
			if err != nil {
				return err
			}

			compiler := mustache.New().WithEscapeMode(mode).WithErrors(strict)
			if partialsPath != "" {
				compiler = compiler.WithPartials(&mustache.FileProvider{Paths: []string{partialsPath}})
			}
			if budget > 0 {
				compiler = compiler.WithBudget(budget)
			}
			if delims != "" {
				open, close, err := splitDelims(delims)
				if err != nil {
					return err
				}
				compiler = compiler.WithDelimiters(open, close)
			}

			tmpl, err := compiler.CompileString(string(src))
			if err != nil {
				return err
			}

			out, err := tmpl.Render(data)
			if err != nil {
				return err
			}

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil
			}
			return os.WriteFile(outPath, []byte(out), 0o644)
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "JSON or YAML file supplying the render context")
	cmd.Flags().StringVar(&partialsPath, "partials", "", "directory to resolve {{>partial}} references from")
	cmd.Flags().StringVar(&delims, "delims", "", `starting delimiters, e.g. "<% %>" (default "{{ }}")`)
	cmd.Flags().StringVar(&escape, "escape", "html", "output escaping mode: html, json, or raw")
	cmd.Flags().Int64Var(&budget, "budget", 0, "fail the render once more than this many bytes of intermediate allocation are live (0 = unlimited)")
	cmd.Flags().StringVar(&outPath, "out", "", "write output to this file instead of stdout")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on a missing variable or partial instead of rendering empty")
	cmd.Flags().BoolVar(&v1Compat, "v1compat", false, "render through the older function-based API (v1api) instead of the Compiler; ignores --budget, --strict, and --delims")

	return cmd
}

// runV1Compat renders through the v1api compatibility shim rather than the
// main Compiler. It exists so that package's older function-based entry
// points stay exercised by something other than its own unit tests; it has
// no equivalent of --budget or --strict, since the API it mimics predates
// both.
func runV1Compat(cmd *cobra.Command, src, partialsPath, escape string, data interface{}, outPath string) error {
	var partials mustache.PartialProvider
	if partialsPath != "" {
		partials = &mustache.FileProvider{Paths: []string{partialsPath}}
	}

	forceRaw := escape == "raw"
	out, err := v1api.RenderPartialsRaw(src, partials, forceRaw, data)
	if err != nil {
		return err
	}

	if outPath == "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	return os.WriteFile(outPath, []byte(out), 0o644)
}

func parseEscapeMode(mode string) (mustache.EscapeMode, error) {
	switch mode {
	case "", "html":
		return mustache.EscapeHTML, nil
	case "json":
		return mustache.EscapeJSON, nil
	case "raw":
		return mustache.EscapeRaw, nil
	default:
		return 0, fmt.Errorf("unknown --escape mode %q (want html, json, or raw)", mode)
	}
}

// splitDelims parses the --delims value, "open close" separated by
// whitespace, into the pair WithDelimiters expects.
func splitDelims(delims string) (string, string, error) {
	fields := strings.Fields(delims)
	if len(fields) != 2 {
		return "", "", fmt.Errorf(`--delims wants two markers separated by a space, e.g. "<%% %%>"`)
	}
	return fields[0], fields[1], nil
}
