package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search buildings by name",
	Long: `Ranks catalog buildings against a free-text query. Nicknames and exact names
rank first, then prefix and substring matches, then close misspellings.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit := searchLimit
	if limit <= 0 {
		limit = app.Config.SearchMaxResults()
	}

	results := app.Service.Search(args[0], limit)
	if searchJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No buildings found.")
		return nil
	}
	q := strings.TrimSpace(args[0])
	ranker := app.Service.Ranker()
	for i, r := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, ranker.Highlight(r.Name, q), r.Score)
		cmd.Printf("      id: %s\n", r.ID)
	}
	return nil
}
