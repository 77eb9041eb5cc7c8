package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gnolang/mathsteps/internal/types"
	"github.com/gnolang/mathsteps/stepper"
)

// initCmd: mathsteps init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = stepper.DefaultConfigFile
		}
		if err := initConfigurationFile(path); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration file created/updated: %s\n", path)
		return nil
	},
}

func initConfigurationFile(configurationPath string) error {
	d, err := yaml.Marshal(types.DefaultConfig())
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
