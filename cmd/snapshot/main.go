package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/williampepple1/site-snapshot/internal/config"
	"github.com/williampepple1/site-snapshot/internal/io"
	"github.com/williampepple1/site-snapshot/internal/logging"
	"github.com/williampepple1/site-snapshot/internal/scraper"
	"github.com/williampepple1/site-snapshot/internal/worker"
	"github.com/williampepple1/site-snapshot/pkg/models"
)

var (
	configFile string
	outputRoot string
	baseURL    string
	logLevel   string
	logFormat  string

	headless bool
	stealth  bool

	fetchDelay      time.Duration
	fetchTimeout    time.Duration
	fetchCategories []string
)

var rootCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Point-in-time snapshot of a web application",
	Long: `Renders a fixed set of pages in headless Chrome, saves their HTML and a
screenshot, catalogs every referenced asset, then downloads those assets.

Run "snapshot render" first, then "snapshot fetch".`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the configured pages and write the asset manifest",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the assets listed in the manifest",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Path to configuration file (YAML)")
	pf.StringVar(&outputRoot, "output", "", "Output root directory")
	pf.StringVar(&baseURL, "base-url", "", "Origin of the site to snapshot")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "Log format (text, json)")

	renderCmd.Flags().BoolVar(&headless, "headless", true, "Run Chrome headless")
	renderCmd.Flags().BoolVar(&stealth, "stealth", false, "Inject the stealth evasion script into every tab")

	fetchCmd.Flags().DurationVar(&fetchDelay, "delay", 100*time.Millisecond, "Pause after every downloaded asset")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "Timeout per asset request")
	fetchCmd.Flags().StringSliceVar(&fetchCategories, "categories", nil, "Asset categories to fetch, in order (css,js,images,fonts,other)")

	rootCmd.AddCommand(renderCmd, fetchCmd)
}

// missingManifestError reports a fetch run started before any render
type missingManifestError struct {
	path string
	err  error
}

func (e *missingManifestError) Error() string {
	return fmt.Sprintf("No asset manifest at %s. Run `snapshot render` first.", e.path)
}

func (e *missingManifestError) Unwrap() error { return e.err }

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the YAML file, .env and SNAPSHOT_* variables, then flags
func loadConfig(cmd *cobra.Command) (*config.AppConfig, error) {
	appConfig := config.Default()
	if configFile != "" {
		var err error
		appConfig, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("loading configuration: %w", err)
		}
		fmt.Printf("Loaded configuration from %s\n", configFile)
	}

	config.LoadDotEnv(".env")
	appConfig.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("output") {
		appConfig.Output.Root = outputRoot
	}
	if flags.Changed("base-url") {
		appConfig.Site.BaseURL = baseURL
	}
	if flags.Changed("log-level") {
		appConfig.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		appConfig.Log.Format = logFormat
	}
	if flags.Changed("headless") {
		appConfig.Browser.Headless = headless
	}
	if flags.Changed("stealth") {
		appConfig.Browser.Stealth = stealth
	}
	if flags.Changed("delay") {
		appConfig.Fetch.Delay = fetchDelay
	}
	if flags.Changed("timeout") {
		appConfig.Fetch.Timeout = fetchTimeout
	}
	if flags.Changed("categories") {
		appConfig.Fetch.Categories = appConfig.Fetch.Categories[:0]
		for _, name := range fetchCategories {
			c, err := models.ParseCategory(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			appConfig.Fetch.Categories = append(appConfig.Fetch.Categories, c)
		}
	}

	if err := appConfig.Validate(); err != nil {
		return nil, err
	}
	return appConfig, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runRender(cmd *cobra.Command, args []string) error {
	appConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runID := logging.Init(appConfig.Log, os.Stderr)

	ctx, stop := signalContext()
	defer stop()

	fmt.Println("Site snapshot: render stage")
	fmt.Printf("Run %s: %d pages from %s into %s\n",
		runID, len(appConfig.Site.Pages), appConfig.Site.BaseURL, appConfig.Output.Root)

	browser, err := scraper.NewBrowserScraper(ctx, appConfig)
	if err != nil {
		return err
	}
	defer browser.Close()

	manifest, list, err := worker.NewRenderer(appConfig, browser).Run(ctx)
	if manifest != nil {
		rendered := 0
		for _, p := range list.Pages {
			if p.Rendered {
				rendered++
			} else {
				fmt.Printf("Error rendering %s: %s\n", p.FullURL, p.Err)
			}
		}
		counts := manifest.Counts()
		fmt.Printf("Rendered %d/%d pages\n", rendered, len(appConfig.Site.Pages))
		for _, c := range models.AllCategories {
			fmt.Printf("  %-7s %d\n", c+":", counts[c])
		}
		layout := io.NewLayout(&appConfig.Output)
		fmt.Printf("Manifest saved to %s\n", layout.ManifestPath())
	}
	return err
}

func runFetch(cmd *cobra.Command, args []string) error {
	appConfig, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runID := logging.Init(appConfig.Log, os.Stderr)

	layout := io.NewLayout(&appConfig.Output)
	reader := io.NewManifestReader(layout)
	manifest, err := reader.ReadManifest()
	if errors.Is(err, io.ErrManifestNotFound) {
		return &missingManifestError{path: layout.ManifestPath(), err: err}
	}
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	client, err := scraper.NewHTTPScraper(appConfig)
	if err != nil {
		return err
	}
	defer client.Close()

	fmt.Println("Site snapshot: fetch stage")
	fmt.Printf("Run %s: %d assets from %s\n", runID, manifest.Total(appConfig.Fetch.Categories...), manifest.BaseURL)
	if list, err := reader.ReadPageList(); err == nil {
		rendered := 0
		for _, p := range list.Pages {
			if p.Rendered {
				rendered++
			}
		}
		fmt.Printf("  Manifest built from %d/%d rendered pages at %s\n",
			rendered, len(list.Pages), list.ScrapedAt.Format(time.RFC3339))
	}
	if client.ProxyUsed != "" {
		fmt.Printf("  Proxy used: %s\n", client.ProxyUsed)
	}

	dl, err := worker.NewFetcher(appConfig, client).Run(ctx, manifest)
	if dl != nil {
		fmt.Printf("Downloaded: %d, Skipped: %d, Failed: %d, Total size: %.2f MB\n",
			dl.Results.Downloaded, dl.Results.Skipped, dl.Results.Failed,
			float64(dl.Results.TotalSize)/(1024*1024))
		fmt.Printf("Download log saved to %s\n", layout.DownloadLogPath())
	}
	return err
}
