package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	routeRepo "endpoint.GO/model/repository/route"
)

var (
	listGroup  string
	listAll    bool
	importFile string
)

var routesListCmd = &cobra.Command{
	Use:   "routes:list",
	Short: "List route records",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps()
		if err != nil {
			return err
		}
		recs, err := d.Routes.List(cmd.Context(), routeRepo.ListFilter{Group: listGroup, ActiveOnly: !listAll})
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tROUTE\tMETHOD\tAUTH\tGROUP\tACTIVE\tSYNCED")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\t%t\n", r.Key, r.Route, r.RequestMethod, r.AuthType, r.Group(), r.Active, r.RegistrySync)
		}
		return w.Flush()
	},
}

var routesSyncCmd = &cobra.Command{
	Use:   "routes:sync [key...]",
	Short: "Request a registry sync for the given keys, or for every pending record when none are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps()
		if err != nil {
			return err
		}
		var n int
		if len(args) == 0 {
			n, err = d.Routes.ResyncPending(cmd.Context())
		} else {
			n, err = d.Routes.RequestSync(cmd.Context(), args...)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Synced %d record(s)\n", n)
		return nil
	},
}

var routesImportCmd = &cobra.Command{
	Use:   "routes:import",
	Short: "Import route records from CSV (upsert by key)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open CSV: %w", err)
		}
		defer f.Close()

		d, err := openDeps()
		if err != nil {
			return err
		}
		res, err := d.Routes.Import(cmd.Context(), f)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}
		out := cmd.OutOrStdout()
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "  [warn] %s\n", w)
		}
		fmt.Fprintf(out, `
=== Import Report ===
CSV rows:       %d
Created:        %d
Updated:        %d
Skipped:        %d
Total time:     %s
=====================
`, res.TotalRows, res.Created, res.Updated, res.Skipped, res.TotalTime.Round(time.Millisecond))
		return nil
	},
}

var routesShowCmd = &cobra.Command{
	Use:   "routes:registered [group]",
	Short: "Print the active routes of a group as \"route (METHODS)\"",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps()
		if err != nil {
			return err
		}
		group := ""
		if len(args) == 1 {
			group = args[0]
		}
		lines, err := d.Registry.RegisteredRoutes(cmd.Context(), group)
		if err != nil {
			return err
		}
		if len(lines) > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
		}
		return nil
	},
}

func init() {
	routesListCmd.Flags().StringVarP(&listGroup, "group", "g", "", "Only records of this route group")
	routesListCmd.Flags().BoolVar(&listAll, "all", false, "Include inactive records")
	routesImportCmd.Flags().StringVarP(&importFile, "file", "f", "", "CSV file path (required)")
	routesImportCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(routesListCmd, routesSyncCmd, routesImportCmd, routesShowCmd)
}
