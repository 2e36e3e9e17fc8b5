package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "grcdigest",
		Short:         "Group open GRC register findings by owner",
		Long:          "grcdigest fetches open findings from the GRC register, resolves each to an owner and email, and emits a per-owner digest.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringP("config", "c", "", "Path to the YAML/JSON configuration file (defaults to GRCDIGEST_CONFIG_PATH, then ./config.yaml)")
	flags.String("log-level", "", "Log level override (debug, info, warn, error)")
	flags.String("log-format", "", "Log format override (console, json, text)")
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("log_format", flags.Lookup("log-format"))

	// GRCDIGEST_USERNAME, GRCDIGEST_PASSWORD, GRCDIGEST_AUTH_TOKEN
	viper.SetEnvPrefix("GRCDIGEST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newServeCmd())
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies flag and environment overrides for mode and
// secrets, and validates the result.
func loadConfig(mode string) (*config.GlobalConfig, error) {
	cfg, err := config.LoadGlobalConfig(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	applyOverrides(cfg, mode)
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.GlobalConfig, mode string) {
	cfg.Mode = mode
	if v := viper.GetString("log_level"); v != "" {
		cfg.LogConfig.LogLevel = v
	}
	if v := viper.GetString("log_format"); v != "" {
		cfg.LogConfig.LogFormat = v
	}
	if v := viper.GetString("username"); v != "" {
		cfg.RegisterConfig.Username = v
	}
	if v := viper.GetString("password"); v != "" {
		cfg.RegisterConfig.Password = v
	}
	if v := viper.GetString("auth_token"); v != "" {
		cfg.ServerConfig.AuthToken = v
	}
}

func initLogger(cfg *config.GlobalConfig) (*logger.Logger, error) {
	l, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("could not initialize logger: %w", err)
	}
	return l, nil
}
