package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status <title>",
		Short: "Show the Jellyseerr status of a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.lookup.ResolveStatus(cmd.Context(), flags.query(args))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
}

func newRequestCmd(flags *globalFlags) *cobra.Command {
	var tmdbID int

	cmd := &cobra.Command{
		Use:   "request <title>",
		Short: "Request a title on Jellyseerr",
		Long:  "Request a title on Jellyseerr. TV shows are requested with every season.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			q := flags.query(args)
			q.TMDBID = tmdbID

			confirmation, err := a.lookup.Submit(cmd.Context(), q)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Requested %q (request %d)\n", confirmation.Title, confirmation.ID)
			return printJSON(cmd.OutOrStdout(), confirmation)
		},
	}

	cmd.Flags().IntVar(&tmdbID, "tmdb-id", 0, "Catalog id to request, skipping search")
	return cmd
}

func newTermsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "terms <title>",
		Short: "List the search terms tried for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			for _, term := range a.lookup.Terms(flags.query(args).Title) {
				fmt.Fprintln(cmd.OutOrStdout(), term)
			}
			return nil
		},
	}
}

func newDebugCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "debug <title>",
		Short: "Search every term for a title and report the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.lookup.DebugSearch(cmd.Context(), flags.query(args))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
}
