// internal/commands/root.go
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwiater/adapterbench/internal/appconfig"
	"github.com/mwiater/adapterbench/internal/logging"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
// On its own it runs one full benchmark pass.
var rootCmd = &cobra.Command{
	Use:          "adapterbench",
	Short:        "adapterbench: composite tensor workload benchmark across compute adapters",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	RunE: runBenchmark,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = versionString()

	defer logging.Close()
	if err := rootCmd.Execute(); err != nil {
		_ = logging.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.Version = versionString()

	d := appconfig.Default()
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (JSON, YAML or TOML; default ./adapterbench.* or ./config/adapterbench.*)")
	flags.Int("matrixSize", d.MatrixSize, "side length of the square test matrices")
	flags.Int("warmupRuns", d.WarmupRuns, "untimed workload iterations per adapter")
	flags.Int("trialRuns", d.TrialRuns, "timed workload iterations per adapter")
	flags.String("backend", d.Backend, "compute backend to benchmark")
	flags.StringP("output", "o", d.Output, "path of the persisted report")
	flags.String("format", d.Format, "report format: json or yaml")
	flags.String("metricsFile", d.MetricsFile, "write Prometheus textfile metrics to this path")
	flags.String("logFile", d.LogFile, "path to the log file")
	flags.Bool("debug", d.Debug, "enable debug logging")
	flags.Uint64("seed", d.Seed, "seed for random test matrices (0 = unseeded)")
}

// initConfig wires viper to defaults, flags, the environment and the config
// file if one was given.
func initConfig() {
	for key, value := range appconfig.Defaults() {
		viper.SetDefault(key, value)
	}
	_ = viper.BindPFlags(rootCmd.PersistentFlags())
	viper.SetEnvPrefix(appconfig.EnvPrefix)
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		return
	}
	viper.SetConfigName("adapterbench")
	viper.AddConfigPath(".")
	viper.AddConfigPath("config")
}

// ensureConfigLoaded reads the config file. A missing default file is not an error.
func ensureConfigLoaded() error {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("failed to load config: %w", err)
	}
	return nil
}

// loadConfig resolves the layered configuration, validates it and starts logging.
func loadConfig() error {
	if err := ensureConfigLoaded(); err != nil {
		return err
	}

	var cfg appconfig.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ConfigPath = viper.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return err
	}
	currentConfig = &cfg

	if err := logging.Init(cfg.LogFilePath()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.SetDebug(cfg.Debug)
	return nil
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// DebugEnabled returns true if debug mode is enabled.
func DebugEnabled() bool { return viper.GetBool("debug") }

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)
}
