package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tendermint/tendermint/libs/log"
	dbm "github.com/tendermint/tm-db"

	clienttypes "github.com/cosmos/ibc-lightcore/modules/core/02-client/types"
	chunktypes "github.com/cosmos/ibc-lightcore/modules/core/chunks/types"
)

const (
	appName   = "ibclited"
	envPrefix = "IBCLITED"

	configFileName = "config.toml"
	dataDirName    = "data"

	LogFormatPlain = "plain"
	LogFormatJSON  = "json"
)

// Flags and configuration keys.
const (
	FlagHome      = "home"
	FlagDBBackend = "db_backend"
	FlagLogLevel  = "log_level"
	FlagLogFormat = "log_format"
	FlagOutput    = "output"

	keyAllowedClients   = "allowed_clients"
	keyMaxChunkSize     = "chunks.max_chunk_size"
	keyMaxChunks        = "chunks.max_chunks"
	keyTelemetryEnabled = "telemetry.enabled"
)

// Config is the ibclited configuration read from $HOME/.ibclited/config.toml,
// IBCLITED_* environment variables and command line flags.
type Config struct {
	Home           string          `mapstructure:"home" yaml:"home"`
	DBBackend      string          `mapstructure:"db_backend" yaml:"db_backend"`
	LogLevel       string          `mapstructure:"log_level" yaml:"log_level"`
	LogFormat      string          `mapstructure:"log_format" yaml:"log_format"`
	AllowedClients []string        `mapstructure:"allowed_clients" yaml:"allowed_clients"`
	Chunks         ChunksConfig    `mapstructure:"chunks" yaml:"chunks"`
	Telemetry      TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
}

// ChunksConfig bounds the chunks uploaded with submit-chunk.
type ChunksConfig struct {
	MaxChunkSize uint64 `mapstructure:"max_chunk_size" yaml:"max_chunk_size"`
	MaxChunks    uint8  `mapstructure:"max_chunks" yaml:"max_chunks"`
}

// TelemetryConfig enables an in-memory metrics sink whose counters are logged
// when a command completes.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultHome is the default ibclited home directory.
func DefaultHome() string {
	return os.ExpandEnv("$HOME/." + appName)
}

func setDefaults(v *viper.Viper) {
	chunkParams := chunktypes.DefaultParams()

	v.SetDefault(FlagHome, DefaultHome())
	v.SetDefault(FlagDBBackend, string(dbm.GoLevelDBBackend))
	v.SetDefault(FlagLogLevel, "info")
	v.SetDefault(FlagLogFormat, LogFormatPlain)
	v.SetDefault(keyAllowedClients, clienttypes.DefaultAllowedClients)
	v.SetDefault(keyMaxChunkSize, chunkParams.MaxChunkSize)
	v.SetDefault(keyMaxChunks, chunkParams.MaxChunks)
	v.SetDefault(keyTelemetryEnabled, false)
}

// bindFlags binds the persistent flags of cmd to their configuration keys and
// enables IBCLITED_ prefixed environment variables.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, flag := range []string{FlagHome, FlagDBBackend, FlagLogLevel, FlagLogFormat} {
		if err := v.BindPFlag(flag, cmd.PersistentFlags().Lookup(flag)); err != nil {
			return errors.Wrapf(err, "failed to bind flag %s", flag)
		}
	}
	return nil
}

// loadConfig reads the configuration file in the home directory, if present,
// and returns the merged configuration.
func loadConfig(v *viper.Viper) (Config, error) {
	configFile := filepath.Join(v.GetString(FlagHome), configFileName)
	if _, err := os.Stat(configFile); err == nil {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "failed to read %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode configuration")
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration before the database is opened.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Home) == "" {
		return errors.New("home directory cannot be blank")
	}
	switch cfg.LogFormat {
	case LogFormatPlain, LogFormatJSON:
	default:
		return errors.Errorf("unsupported log format %q, expected %s or %s", cfg.LogFormat, LogFormatPlain, LogFormatJSON)
	}
	if _, err := log.AllowLevel(cfg.LogLevel); err != nil {
		return err
	}
	if err := cfg.ClientParams().Validate(); err != nil {
		return errors.Wrap(err, "invalid allowed clients")
	}
	return errors.Wrap(cfg.ChunkParams().Validate(), "invalid chunk parameters")
}

// ClientParams returns the client types which may be created.
func (cfg Config) ClientParams() clienttypes.Params {
	return clienttypes.NewParams(cfg.AllowedClients...)
}

// ChunkParams returns the chunk store limits.
func (cfg Config) ChunkParams() chunktypes.Params {
	return chunktypes.Params{
		MaxChunkSize: cfg.Chunks.MaxChunkSize,
		MaxChunks:    cfg.Chunks.MaxChunks,
	}
}

// DataDir is the directory holding the client database.
func (cfg Config) DataDir() string {
	return filepath.Join(cfg.Home, dataDirName)
}
