package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the ibclited root command. Every invocation reads its own
// configuration, so commands can be executed repeatedly within a process.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	setDefaults(v)

	a := &app{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Verify counterparty chain state with IBC light clients",
		Long: `ibclited maintains IBC light clients in a local database. Clients are created
from a trusted client and consensus state, updated with verified headers or
attestations, and used to verify that values are committed on the counterparty.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindFlags(v, cmd.Root()); err != nil {
				return err
			}

			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return a.setup(cfg, cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().String(FlagHome, DefaultHome(), "directory for config and data")
	rootCmd.PersistentFlags().String(FlagDBBackend, v.GetString(FlagDBBackend), "database backend")
	rootCmd.PersistentFlags().String(FlagLogLevel, v.GetString(FlagLogLevel), "log level (debug|info|error|none)")
	rootCmd.PersistentFlags().String(FlagLogFormat, v.GetString(FlagLogFormat), "log format (plain|json)")

	rootCmd.AddCommand(
		newInitCmd(v),
		newCreateClientCmd(a),
		newUpdateClientCmd(a),
		newSubmitChunkCmd(a),
		newUpdateClientWithChunksCmd(a),
		newCleanupChunksCmd(a),
		newSubmitMisbehaviourCmd(a),
		newPruneCmd(a),
		newStoreValidatorSetCmd(a),
		newPruneValidatorSetCmd(a),
		newStatusCmd(a),
		newTimestampCmd(a),
		newVerifyAttestationCmd(a),
		newVerifyMembershipCmd(a),
	)

	return rootCmd
}
