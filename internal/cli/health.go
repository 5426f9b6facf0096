package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the data source and cache answer",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if len(app.clients) == 0 {
		return errors.New("no data source configured: set source.base_url in the config file")
	}

	ctx, cancel := context.WithTimeout(ctxOf(cmd), 5*time.Second)
	defer cancel()

	urls := make([]string, 0, len(app.clients))
	for u := range app.clients {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	failed := 0
	for _, u := range urls {
		if err := app.clients[u].HealthCheck(ctx); err != nil {
			failed++
			cmd.Printf("source %s: %v\n", u, err)
			continue
		}
		cmd.Printf("source %s: ok\n", u)
	}
	if app.redis != nil {
		if err := app.redis.Ping(ctx).Err(); err != nil {
			failed++
			cmd.Printf("redis %s: %v\n", app.Config.Redis.Address, err)
		} else {
			cmd.Printf("redis %s: ok\n", app.Config.Redis.Address)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
