// Package main is the entry point for the zpl2pdf server and CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	_ "go.uber.org/automaxprocs"

	"github.com/devadigapratham/zpl2pdf/config"
	"github.com/devadigapratham/zpl2pdf/logging"
)

// version is set at build time via ldflags
var version = "dev"

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "zpl2pdf",
	Short: "Convert ZPL labels to PDF through a remote conversion service",
	Long: `zpl2pdf serves a small web front end for converting ZPL label markup
to PDF. Conversion is delegated to an external service (ZPL_API_URL); the
generated PDF is relayed through a same-origin proxy restricted to a single
host (ALLOWED_PDF_DOMAIN).

Run "zpl2pdf serve" to start the server, or "zpl2pdf convert" to convert a
file against a running server from the terminal.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./zpl2pdf.yaml or ~/.config/zpl2pdf/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")

	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("zpl2pdf")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "zpl2pdf"))
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
			os.Exit(1)
		}
	}
}

// newLogger builds the process logger from cfg
func newLogger(cfg *config.Config) *slog.Logger {
	// Level was validated by config.Load
	level, _ := logging.ParseLevel(cfg.LogLevel)
	return logging.New(os.Stderr, level, cfg.LogFormat)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
