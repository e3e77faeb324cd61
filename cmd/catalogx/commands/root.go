// Package commands implements the CLI commands for catalogx.
package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jmylchreest/catalogx/internal/version"
)

// configErr holds a config file that exists but could not be read. It is
// reported by commands that need the configuration.
var configErr error

var rootCmd = &cobra.Command{
	Use:   "catalogx",
	Short: "Selector-driven e-commerce catalog scraper",
	Long: `Catalogx walks the listing pages of an online catalog, follows every
product link and exports one row per product.

Where each field lives on a page is described by CSS selectors in the
ParserSettings section of appsettings.yaml (searched in . and ..).

Examples:
  # Scrape the first listing page into exports/exported-<timestamp>.xlsx
  catalogx scrape

  # Pages 1 to 3 and 5, as CSV
  catalogx scrape --pages 1-3,5 --format csv

  # Client-side rendered catalog
  catalogx scrape --fetch-mode dynamic --wait-selector "a.product"`,
	SilenceUsage: true,
	Version:      version.String(),
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default appsettings.yaml in . or ..)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "log as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	configErr = nil
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("..")
		viper.SetConfigName("appsettings")
	}

	// Environment variables, e.g. CATALOGX_PARSERSETTINGS_BASEURL
	viper.SetEnvPrefix("CATALOGX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
