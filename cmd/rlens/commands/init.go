package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JoshuaHockley/rlens/pkg/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a config file with default values to the default location, or
to the path given with --config. Refuses to overwrite an existing
file.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	if err := config.Default().Write(path); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
