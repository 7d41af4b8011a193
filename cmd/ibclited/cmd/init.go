package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

func newInitCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration to the home directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			home := v.GetString(FlagHome)
			if err := os.MkdirAll(home, 0o755); err != nil {
				return errors.Wrapf(err, "failed to create %s", home)
			}

			configFile := filepath.Join(home, configFileName)
			if err := v.SafeWriteConfigAs(configFile); err != nil {
				return errors.Wrapf(err, "failed to write %s", configFile)
			}

			var cfg Config
			if err := v.Unmarshal(&cfg); err != nil {
				return err
			}
			bz, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n%s", configFile, bz)
			return nil
		},
	}
}
