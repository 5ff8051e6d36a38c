package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-portfolio-client/resourcecache"
)

func (a *App) newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the client caches",
	}
	cmd.AddCommand(a.newCacheStatsCommand())
	cmd.AddCommand(a.newCacheClearCommand())
	cmd.AddCommand(a.newCacheWarmCommand())
	return cmd
}

func (a *App) newCacheStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show query cache counters and local cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			stats := c.Services().Stats(cmd.Context())
			return a.formatter(cmd).Success(stats, func(w io.Writer) error {
				tw := newTable(w)
				fmt.Fprintf(tw, "Query entries\t%d\n", stats.Query.Entries)
				fmt.Fprintf(tw, "Query hits\t%d\n", stats.Query.Hits)
				fmt.Fprintf(tw, "Query misses\t%d\n", stats.Query.Misses)
				fmt.Fprintf(tw, "Local memory entries\t%d\n", stats.Local.MemoryEntries)
				fmt.Fprintf(tw, "Local persisted entries\t%d\n", stats.Local.PersistedEntries)
				return tw.Flush()
			})
		},
	}
}

func (a *App) newCacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cached query and local entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			if err := c.Services().Clear(cmd.Context()); err != nil {
				return err
			}
			stats := c.Services().Stats(cmd.Context())
			return a.formatter(cmd).Success(stats, func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "Caches cleared")
				return err
			})
		},
	}
}

func (a *App) newCacheWarmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "warm [family...]",
		Short: "Prefetch query families",
		Long: fmt.Sprintf(`Prefetch the unfiltered read of each family. Without arguments the
critical families are warmed: %s.`, strings.Join(resourcecache.CriticalFamilies, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.containerFor(cmd)
			if err != nil {
				return err
			}
			families := args
			if len(families) == 0 {
				families = resourcecache.CriticalFamilies
			}
			if err := c.Services().Warm(cmd.Context(), families...); err != nil {
				return err
			}
			return a.formatter(cmd).Success(map[string][]string{"warmed": families}, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "Warmed %s\n", strings.Join(families, ", "))
				return err
			})
		},
	}
}
