package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/synotools/synoexport/internal/config"
	"github.com/synotools/synoexport/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	configFileName = "config"
)

var rootCmd = &cobra.Command{
	Use:     "synoexport",
	Short:   "Export Synology Office files as Microsoft Office documents",
	Version: version.Detailed(),
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := promptMissingCredentials(cfg); err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// config is good, errors past this point are runtime failures
		cmd.SilenceUsage = true
		setupLogging(cfg)

		return runExport(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("output", "o", config.DefaultOutputDir, "directory the exported files are written to")
	rootCmd.Flags().StringP("server", "s", "", "Synology NAS address, e.g. https://nas.local:5001")
	rootCmd.Flags().StringP("username", "u", "", "Synology NAS username")
	rootCmd.Flags().StringP("password", "p", "", "Synology NAS password")
	rootCmd.Flags().BoolP("force", "f", false, "download everything again, ignoring the download history")
	rootCmd.Flags().Bool("skip-history", false, "neither read nor write the download history")
	rootCmd.Flags().String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	rootCmd.Flags().Bool("insecure", false, "skip TLS certificate verification")
	rootCmd.Flags().Duration("timeout", config.DefaultTimeout, "per-request timeout")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "config file")
}

func main() {
	// a .env in the working directory may carry the SYNOLOGY_NAS_* variables
	_ = godotenv.Load()

	// console-only logging until the output directory is known
	setupConsoleLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig assembles the run config. Values layer in viper's order:
// flags over environment over the config file over flag defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".synoexport"))
		viper.AddConfigPath(filepath.Join(home, ".config/synoexport"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, ok := err.(viper.ConfigFileNotFoundError)
		if !enoent && !ok {
			return nil, fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	// Bind flags to viper
	viper.BindPFlag("output_dir", cmd.Flags().Lookup("output"))
	viper.BindPFlag("server_url", cmd.Flags().Lookup("server"))
	viper.BindPFlag("username", cmd.Flags().Lookup("username"))
	viper.BindPFlag("password", cmd.Flags().Lookup("password"))
	viper.BindPFlag("force", cmd.Flags().Lookup("force"))
	viper.BindPFlag("skip_history", cmd.Flags().Lookup("skip-history"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("insecure", cmd.Flags().Lookup("insecure"))
	viper.BindPFlag("timeout", cmd.Flags().Lookup("timeout"))

	// Set up environment variables
	viper.SetEnvPrefix("SYNOEXPORT")
	viper.AutomaticEnv()

	// the SYNOLOGY_NAS_* names from .env files work as well
	viper.BindEnv("server_url", "SYNOEXPORT_SERVER_URL", "SYNOLOGY_NAS_HOST")
	viper.BindEnv("username", "SYNOEXPORT_USERNAME", "SYNOLOGY_NAS_USER")
	viper.BindEnv("password", "SYNOEXPORT_PASSWORD", "SYNOLOGY_NAS_PASS")

	return &config.Config{
		OutputDir:   viper.GetString("output_dir"),
		ServerURL:   viper.GetString("server_url"),
		Username:    viper.GetString("username"),
		Password:    viper.GetString("password"),
		Force:       viper.GetBool("force"),
		SkipHistory: viper.GetBool("skip_history"),
		LogLevel:    viper.GetString("log_level"),
		Insecure:    viper.GetBool("insecure"),
		Timeout:     viper.GetDuration("timeout"),
	}, nil
}
