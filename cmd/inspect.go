package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	latexcalc "github.com/leo5358/latex-calc"
	"github.com/leo5358/latex-calc/symbolic"
)

var (
	stageStyle = color.New(color.FgCyan, color.Bold)
	okStyle    = color.New(color.FgGreen, color.Bold)
	errorStyle = color.New(color.FgRed, color.Bold)
)

func newInspectCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <path>",
		Short: "Print the intermediate result of every pipeline stage",
		Args:  quietArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readFragment(args[0])
			if err != nil {
				return err
			}
			p, logger, err := o.pipeline(cmd)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			trace, err := p.Run(src)
			printTrace(o.stdout, p, trace, err)
			return nil
		},
	}
}

func printTrace(w io.Writer, p *latexcalc.Pipeline, trace *latexcalc.Trace, runErr error) {
	stage := func(name, value string) {
		stageStyle.Fprintf(w, "%s:\n", name)
		if value == "" {
			value = "(empty)"
		}
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(value, "\n", "\n  "))
	}

	stage("mode", string(p.Config().Mode))
	stage("sanitized", trace.Sanitized)
	if trace.Placeholders != nil {
		var rows []string
		for _, key := range trace.Placeholders.Keys() {
			m, _ := trace.Placeholders.Lookup(key)
			rows = append(rows, key+" = "+m.LaTeX())
		}
		stage("placeholders", strings.Join(rows, "\n"))
	}
	stage("normalized", trace.Normalized)
	stage("strategies", strings.Join(p.Strategies(), ", "))
	stage("strategy", trace.Strategy)
	if trace.Tree != nil {
		tree, err := symbolic.ToJSONIndent(trace.Tree)
		if err != nil {
			tree = err.Error()
		}
		stage("tree", tree)
	}
	if trace.Forced != nil {
		stage("forced", trace.Forced.String())
	}

	if runErr != nil {
		errorStyle.Fprintln(w, "error:")
		fmt.Fprintf(w, "  %v\n", runErr)
		return
	}
	okStyle.Fprintln(w, "result:")
	fmt.Fprintf(w, "  %s\n", trace.Output)
}
