package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/seerlink/seerlink/internal/config"
	"github.com/seerlink/seerlink/internal/logger"
	"github.com/seerlink/seerlink/internal/lookup"
	"github.com/seerlink/seerlink/internal/media"
	"github.com/seerlink/seerlink/internal/retry"
	"github.com/seerlink/seerlink/internal/seerr"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	mediaType  string
	year       int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "seerlink",
		Short: "Jellyseerr status and requests for media pages",
		Long: `seerlink resolves titles found on media pages against a Jellyseerr server.
It serves the HTTP API used by the browser extension, and can run the same
lookups from the command line.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file")
	root.PersistentFlags().StringVarP(&flags.mediaType, "type", "t", "", "Media type of the title (movie or tv)")
	root.PersistentFlags().IntVarP(&flags.year, "year", "y", 0, "Release year of the title")

	root.AddCommand(
		newServeCmd(flags),
		newStatusCmd(flags),
		newRequestCmd(flags),
		newTermsCmd(flags),
		newDebugCmd(flags),
		newExtractCmd(flags),
		newConfigCmd(flags),
	)
	return root
}

// app holds the pieces shared by the lookup commands.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	client *seerr.Client
	lookup *lookup.Service
}

// newApp loads config and builds the Jellyseerr client and lookup service.
// Command-line logging goes to stderr so stdout stays machine readable.
func newApp(flags *globalFlags, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: stderr,
	})

	client := newClient(cfg, log)
	return &app{
		cfg:    cfg,
		log:    log,
		client: client,
		lookup: lookup.NewService(client, lookupConfig(cfg), log.Logger),
	}, nil
}

func (a *app) Close() {
	_ = a.log.Close()
}

func newClient(cfg *config.Config, log *logger.Logger) *seerr.Client {
	clientLog := log.WithComponent("jellyseerr")
	return seerr.NewClient(seerr.ClientConfig{
		URL:            cfg.Jellyseerr.URL,
		APIKey:         cfg.Jellyseerr.APIKey,
		Language:       cfg.Jellyseerr.Language,
		Timeout:        cfg.Jellyseerr.Timeout,
		SkipSSLVerify:  cfg.Jellyseerr.SkipSSLVerify,
		SearchCacheTTL: cfg.Cache.SearchTTL,
		Logger:         &clientLog,
	})
}

func lookupConfig(cfg *config.Config) lookup.Config {
	return lookup.Config{
		Matching: cfg.Matching,
		Retry: retry.Config{
			MaxAttempts: cfg.Retry.Attempts,
			Delay:       cfg.Retry.Delay,
			Multiplier:  1,
		},
	}
}

// query builds a media query from positional args and the shared flags.
func (f *globalFlags) query(args []string) media.Query {
	q := media.Query{
		Title:  strings.TrimSpace(strings.Join(args, " ")),
		Year:   f.year,
		Source: "cli",
	}
	if f.mediaType != "" {
		q.MediaType = media.ParseType(f.mediaType)
	}
	return q
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
