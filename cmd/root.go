package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	latexcalc "github.com/leo5358/latex-calc"
)

// errQuiet marks failures that end the process with exit code 1 and no
// output: a missing argument or an unreadable input file.
var errQuiet = errors.New("quiet failure")

type options struct {
	cfgFile string
	mode    string
	places  int
	verbose bool

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	o := &options{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "latexcalc <path>",
		Short:         "Evaluate the LaTeX math fragment stored in a file",
		Long: `Evaluate the LaTeX math fragment stored in a file.

A lone argument that matches a subcommand name and an existing file is
read as the fragment file; run "init .latexcalc.yaml" to write the
configuration next to such a file.`,
		Args:          quietArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, o, args[0])
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "configuration file (default "+latexcalc.DefaultConfigFile+" when present)")
	flags.StringVar(&o.mode, "mode", string(latexcalc.ModeExact), "evaluation mode: exact or numeric")
	flags.IntVar(&o.places, "places", latexcalc.DefaultConfig().DecimalPlaces, "decimal places in numeric mode")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "log pipeline stages to stderr")

	rootCmd.AddCommand(newInspectCmd(o))
	rootCmd.AddCommand(newInitCmd(o))
	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(fragmentArgs(args))
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errQuiet) {
			fmt.Fprintln(stderr, err)
		}
		return 1
	}
	return 0
}

// fragmentArgs turns a subcommand name that got no arguments of its own
// into a relative path when a file of that name exists.
func fragmentArgs(args []string) []string {
	scratch := newRootCmd(io.Discard, io.Discard)
	sub, rest, err := scratch.Find(args)
	if err != nil || sub == scratch {
		return args
	}
	if err := sub.ParseFlags(rest); err != nil || sub.Flags().NArg() > 0 {
		return args
	}
	if info, err := os.Stat(sub.Name()); err != nil || !info.Mode().IsRegular() {
		return args
	}
	out := append([]string(nil), args...)
	for i, a := range out {
		if a == sub.Name() {
			out[i] = "." + string(filepath.Separator) + a
			break
		}
	}
	return out
}

func quietArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return fmt.Errorf("%w: %v", errQuiet, err)
		}
		return nil
	}
}

func readFragment(path string) (string, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errQuiet, err)
	}
	return string(src), nil
}

func runEvaluate(cmd *cobra.Command, o *options, path string) error {
	src, err := readFragment(path)
	if err != nil {
		return err
	}
	p, logger, err := o.pipeline(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	out, err := p.Evaluate(src)
	if err != nil {
		logger.Debug("no result", zap.String("path", path), zap.Error(err))
		return nil
	}
	_, err = fmt.Fprint(o.stdout, out)
	return err
}

// loadConfig reads --config, or the default file in the working directory
// when it exists, and applies the flags that were set explicitly.
func (o *options) loadConfig(cmd *cobra.Command) (latexcalc.Config, error) {
	cfg := latexcalc.DefaultConfig()
	path := o.cfgFile
	if path == "" {
		if _, err := os.Stat(latexcalc.DefaultConfigFile); err == nil {
			path = latexcalc.DefaultConfigFile
		}
	}
	if path != "" {
		var err error
		if cfg, err = latexcalc.LoadConfig(path); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		mode, err := latexcalc.ParseMode(o.mode)
		if err != nil {
			return cfg, err
		}
		cfg.Mode = mode
	}
	if flags.Changed("places") {
		cfg.DecimalPlaces = o.places
	}
	if o.verbose {
		cfg.LogLevel = zapcore.DebugLevel.String()
	}
	return cfg, cfg.Validate()
}

func (o *options) pipeline(cmd *cobra.Command) (*latexcalc.Pipeline, *zap.Logger, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.LogLevel, o.stderr)
	if err != nil {
		return nil, nil, err
	}
	p, err := latexcalc.New(cfg, latexcalc.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return p, logger, nil
}

// newLogger returns a no-op logger unless a level is configured, so stdout
// carries nothing but the result.
func newLogger(level string, w io.Writer) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), lvl)
	return zap.New(core, zap.Development()), nil
}
