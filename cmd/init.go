package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	latexcalc "github.com/leo5358/latex-calc"
)

func newInitCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := latexcalc.DefaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := initConfigurationFile(path); err != nil {
				return err
			}
			fmt.Fprintf(o.stdout, "Configuration file created/updated: %s\n", path)
			return nil
		},
	}
}

func initConfigurationFile(configurationPath string) error {
	d, err := yaml.Marshal(latexcalc.DefaultConfig())
	if err != nil {
		return err
	}

	f, err := os.Create(configurationPath)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
