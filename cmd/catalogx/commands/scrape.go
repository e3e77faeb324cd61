package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	clifetcher "github.com/jmylchreest/catalogx/cmd/catalogx/fetcher"
	"github.com/jmylchreest/catalogx/internal/logger"
	"github.com/jmylchreest/catalogx/internal/output"
	"github.com/jmylchreest/catalogx/pkg/catalog"
	"github.com/jmylchreest/catalogx/pkg/fetcher"
	"github.com/jmylchreest/catalogx/pkg/selector"
)

// Config keys outside the ParserSettings section.
const (
	keyExportDirectory = "ExportSettings.Directory"
	keyExportFileName  = "ExportSettings.FileName"
	keyExportFormat    = "ExportSettings.Format"
	keyExportSheetName = "ExportSettings.SheetName"
	keyExportTimezone  = "ExportSettings.Timezone"
	keyExportPretty    = "ExportSettings.Pretty"
	keyExportIndent    = "ExportSettings.Indent"

	keyFetchMode         = "FetchSettings.Mode"
	keyFetchTimeout      = "FetchSettings.Timeout"
	keyFetchUserAgent    = "FetchSettings.UserAgent"
	keyFetchMaxBodySize  = "FetchSettings.MaxBodySize"
	keyFetchWaitSelector = "FetchSettings.WaitSelector"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape listing pages and export their products",
	Long: `Scrape fetches each requested listing page ({BaseURL}?page=N), follows
every product link on it and exports that page's products to a new
timestamped file.

Any fetch or extraction failure aborts the run and the page being processed
is not exported. Use --isolate-pages to skip a failed page and continue.

Examples:
  catalogx scrape --pages 1-3
  catalogx scrape --pages 2 --format json --output-dir out
  catalogx scrape --config shop.yaml --isolate-pages`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	flags := scrapeCmd.Flags()

	flags.StringP("pages", "p", "1", "listing pages to scrape, e.g. 1-3,5")
	flags.String("section", selector.DefaultSection, "config section holding the selectors")
	flags.Bool("isolate-pages", false, "skip a failed page instead of aborting the run")

	// Export settings
	flags.StringP("output-dir", "o", "exports", "export directory")
	flags.String("file-name", "exported", "export base file name")
	flags.String("format", string(output.FormatXLSX), "export format: xlsx, csv, json, jsonl, yaml")
	flags.String("sheet-name", output.DefaultSheetName, "worksheet name for xlsx exports")
	flags.String("timezone", "", "IANA timezone for export timestamps (default local)")
	flags.Bool("pretty", true, "indent json exports")
	flags.String("indent", "  ", "indentation for pretty json exports")

	// Fetch settings
	flags.String("fetch-mode", "static", "fetch mode: static, dynamic")
	flags.Duration("timeout", 30*time.Second, "request timeout")
	flags.String("user-agent", "", "User-Agent header (default Chrome)")
	flags.String("max-body-size", "10MB", "max response body size for static fetches (0=unlimited)")
	flags.String("wait-selector", "", "CSS selector to wait for before reading a page (dynamic mode)")

	// Bind to viper so appsettings.yaml and CATALOGX_* env vars can set them
	_ = viper.BindPFlag(keyExportDirectory, flags.Lookup("output-dir"))
	_ = viper.BindPFlag(keyExportFileName, flags.Lookup("file-name"))
	_ = viper.BindPFlag(keyExportFormat, flags.Lookup("format"))
	_ = viper.BindPFlag(keyExportSheetName, flags.Lookup("sheet-name"))
	_ = viper.BindPFlag(keyExportTimezone, flags.Lookup("timezone"))
	_ = viper.BindPFlag(keyExportPretty, flags.Lookup("pretty"))
	_ = viper.BindPFlag(keyExportIndent, flags.Lookup("indent"))
	_ = viper.BindPFlag(keyFetchMode, flags.Lookup("fetch-mode"))
	_ = viper.BindPFlag(keyFetchTimeout, flags.Lookup("timeout"))
	_ = viper.BindPFlag(keyFetchUserAgent, flags.Lookup("user-agent"))
	_ = viper.BindPFlag(keyFetchMaxBodySize, flags.Lookup("max-body-size"))
	_ = viper.BindPFlag(keyFetchWaitSelector, flags.Lookup("wait-selector"))
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger.Init(logger.Options{
		Debug: viper.GetBool("debug"),
		Quiet: viper.GetBool("quiet"),
		JSON:  viper.GetBool("log_json"),
	})

	if configErr != nil {
		return configErr
	}
	if used := viper.ConfigFileUsed(); used != "" {
		logger.Debug("config loaded", "path", used)
	}

	pageList, _ := cmd.Flags().GetString("pages")
	pages, err := parsePages(pageList)
	if err != nil {
		return err
	}

	section, _ := cmd.Flags().GetString("section")
	cfg, err := selector.Load(viper.GetViper(), section)
	if err != nil {
		return err
	}
	logger.Debug("selectors loaded", "section", section, "base_url", cfg.BaseURL, "description_format", cfg.Format())

	exporter, err := newExporter()
	if err != nil {
		return err
	}

	f, err := newFetcher()
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	isolate, _ := cmd.Flags().GetBool("isolate-pages")
	pipeline := catalog.New(cfg, f, exporter,
		catalog.WithPageIsolation(isolate),
		catalog.WithFetchOptions(fetcher.Options{
			WaitForSelector: viper.GetString(keyFetchWaitSelector),
		}),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	records, err := pipeline.Run(ctx, pages)
	if err != nil {
		return err
	}

	logger.Info("scrape complete", "pages", len(pages), "records", len(records))
	return nil
}

func newExporter() (*output.FileExporter, error) {
	format, err := output.ParseFormat(viper.GetString(keyExportFormat))
	if err != nil {
		return nil, err
	}

	loc := time.Local
	if tz := strings.TrimSpace(viper.GetString(keyExportTimezone)); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
	}

	return output.NewFileExporter(output.ExporterConfig{
		Directory: viper.GetString(keyExportDirectory),
		FileName:  viper.GetString(keyExportFileName),
		Format:    format,
		SheetName: viper.GetString(keyExportSheetName),
		Location:  loc,
		Pretty:    viper.GetBool(keyExportPretty),
		Indent:    viper.GetString(keyExportIndent),
	})
}

func newFetcher() (fetcher.Fetcher, error) {
	timeout := viper.GetDuration(keyFetchTimeout)
	userAgent := viper.GetString(keyFetchUserAgent)

	mode := strings.ToLower(strings.TrimSpace(viper.GetString(keyFetchMode)))
	logger.Debug("fetch mode", "mode", mode, "timeout", timeout)

	switch mode {
	case "", "static":
		maxBodySize, err := parseBodySize(viper.GetString(keyFetchMaxBodySize))
		if err != nil {
			return nil, err
		}
		return fetcher.NewStatic(fetcher.StaticConfig{
			UserAgent:   userAgent,
			Timeout:     timeout,
			MaxBodySize: maxBodySize,
		}), nil
	case "dynamic":
		return clifetcher.NewDynamicFetcher(clifetcher.Config{
			UserAgent: userAgent,
			Timeout:   timeout,
		})
	default:
		return nil, fmt.Errorf("unsupported fetch mode: %s", mode)
	}
}

// parseBodySize parses a humanized size such as "10MB". Empty or "0" means
// unlimited.
func parseBodySize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid max-body-size %q: %w", s, err)
	}
	return int(n), nil
}
