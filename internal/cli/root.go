package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ishwar-prog/Singularity-Hackathon/internal/logging"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/pipeline"
	"github.com/ishwar-prog/Singularity-Hackathon/internal/store"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// envKeys are config keys that may be set from RELIEFSCOUT_* variables
// without appearing in a config file
var envKeys = []string{
	"intake.provider",
	"intake.model",
	"intake.api_key",
	"intake.base_url",
	"cache.redis_url",
	"store.path",
	"server.addr",
	"log.level",
	"log.development",
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "reliefscout",
	Short: "ReliefScout - Credibility scoring for disaster reports",
	Long: `ReliefScout scores how much a disaster report can be trusted before
anyone acts on it.

Each report is classified (disaster, need, location, people affected),
then scored on its source platform, location detail, classifier
confidence, donation links, signs of recycled content and sensational
language. The result is a 0..1 score, a verdict band and a
recommendation, with every factor that moved the score listed.

ReliefScout flags reports for verification. It never decides that a
disaster did or did not happen.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of ReliefScout.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reliefscout %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.reliefscout/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".reliefscout"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// RELIEFSCOUT_INTAKE_API_KEY maps to intake.api_key
	viper.SetEnvPrefix("RELIEFSCOUT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig overlays the config file and environment on the defaults
func loadConfig() (*model.Config, error) {
	cfg, err := decodeConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Output.Verbose = true
	}
	return cfg, nil
}

// decodeConfig overlays the settings held by v on the defaults. Keys absent
// from v keep their default; a list that is present, such as rules.platforms
// or rules.bands, replaces the default list instead of merging into it
// element by element.
func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	zeroFields := func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }
	if err := v.Unmarshal(cfg, zeroFields); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the command logger. --verbose lowers the level to debug.
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Log.Development)
}

// newPipeline wires a pipeline with the optional report store. The returned
// cleanup closes the store.
func newPipeline(cfg *model.Config, logger *zap.Logger) (*pipeline.Pipeline, *store.SQLiteStore, func(), error) {
	var reports *store.SQLiteStore
	opts := pipeline.Options{Logger: logger}

	if cfg.Store.Path != "" {
		s, err := store.NewSQLiteStore(cfg.Store.Path)
		if err != nil {
			logger.Warn("report store unavailable, reports will not be saved",
				zap.String("path", cfg.Store.Path), zap.Error(err))
		} else {
			reports = s
			opts.Store = s
		}
	}

	cleanup := func() {
		if reports != nil {
			if err := reports.Close(); err != nil {
				logger.Warn("close report store", zap.Error(err))
			}
		}
	}

	p, err := pipeline.New(cfg, opts)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return p, reports, cleanup, nil
}
