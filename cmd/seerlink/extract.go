package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seerlink/seerlink/internal/extract"
	"github.com/seerlink/seerlink/internal/media"
)

func newExtractCmd(flags *globalFlags) *cobra.Command {
	var pageURL string
	var resolve bool

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Extract a media query from a saved HTML page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open page: %w", err)
			}
			defer f.Close()

			extractLog := a.log.WithComponent("extract")
			extractor, err := extract.New(a.cfg.Extract, &extractLog)
			if err != nil {
				return err
			}

			q, err := extractor.Extract(pageURL, f)
			if err != nil {
				return err
			}
			if flags.year > 0 {
				q.Year = flags.year
			}
			if flags.mediaType != "" {
				q.MediaType = media.ParseType(flags.mediaType)
			}
			if !resolve {
				return printJSON(cmd.OutOrStdout(), q)
			}

			result, err := a.lookup.ResolveStatus(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"query": q, "status": result})
		},
	}

	cmd.Flags().StringVar(&pageURL, "url", "", "URL the page was saved from")
	cmd.Flags().BoolVar(&resolve, "resolve", false, "Also resolve the extracted title's status")
	return cmd
}
