package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	buildingsRemote bool
	buildingsJSON   bool
	resolveJSON     bool
)

var buildingsCmd = &cobra.Command{
	Use:   "buildings",
	Short: "List known buildings",
	Long: `Lists the building catalog. With --remote, lists the building names the
scheduling data source reports and the catalog entry each one maps to.`,
	Args: cobra.NoArgs,
	RunE: runBuildings,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [name|id|path]",
	Short: "Show the catalog entry a name resolves to",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	buildingsCmd.Flags().BoolVar(&buildingsRemote, "remote", false, "list data source names instead of the catalog")
	buildingsCmd.Flags().BoolVar(&buildingsJSON, "json", false, "output as JSON")
	resolveCmd.Flags().BoolVar(&resolveJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(buildingsCmd, resolveCmd)
}

func runBuildings(cmd *cobra.Command, _ []string) error {
	if buildingsRemote {
		return runRemoteBuildings(cmd)
	}

	records := app.Service.Registry().All()
	if buildingsJSON {
		return printJSON(cmd, records)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPATH")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.ID, rec.DisplayName, rec.LegacyPath)
	}
	return tw.Flush()
}

func runRemoteBuildings(cmd *cobra.Command) error {
	remote, err := app.Service.RemoteBuildings(ctxOf(cmd))
	if err != nil {
		return explain(err)
	}
	if buildingsJSON {
		return printJSON(cmd, remote)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE NAME\tBUILDING\tID")
	for _, rb := range remote {
		id := "-"
		if rb.Record != nil {
			id = rb.Record.ID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rb.SourceName, rb.Canonical, id)
	}
	return tw.Flush()
}

func runResolve(cmd *cobra.Command, args []string) error {
	rec, err := app.Service.Resolve(args[0])
	if err != nil {
		return err
	}
	if resolveJSON {
		return printJSON(cmd, rec)
	}

	cmd.Printf("ID:           %s\n", rec.ID)
	cmd.Printf("Name:         %s\n", rec.FullName)
	if rec.DisplayName != rec.FullName {
		cmd.Printf("Display name: %s\n", rec.DisplayName)
	}
	cmd.Printf("Path:         %s\n", rec.LegacyPath)
	cmd.Printf("Source names: %s\n", strings.Join(app.Service.SourceNames(rec), "; "))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
