package main

import (
	"fmt"

	"github.com/cuemby/rolecfg/pkg/cache"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and seed the node state cache",
	Long: `The node state cache holds the HOSTNAME and IP used for placeholder
substitution and keytab principals. Entries only persist across runs when
a state database is configured.`,
}

var cacheSetCmd = &cobra.Command{
	Use:     "set KEY VALUE",
	Short:   "Set a cache entry",
	Example: `  rolecfg cache set HOSTNAME node1.example.com --state-db /var/lib/rolecfg/state.db`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeCache, err := commandCache(cmd)
		if err != nil {
			return err
		}
		defer closeCache()

		if err := c.Set(args[0], args[1]); err != nil {
			return fmt.Errorf("failed to set %s: %w", args[0], err)
		}
		fmt.Printf("✓ %s set\n", args[0])
		return nil
	},
}

var cacheGetCmd = &cobra.Command{
	Use:   "get [KEY]",
	Short: "Print a cache entry, or every entry of the state database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, closeCache, err := commandCache(cmd)
		if err != nil {
			return err
		}
		defer closeCache()

		if len(args) == 1 {
			fmt.Println(c.GetString(args[0]))
			return nil
		}

		db, ok := c.(*cache.BoltCache)
		if !ok {
			for _, key := range []string{cache.KeyHostname, cache.KeyIP} {
				fmt.Printf("%-10s %s\n", key, c.GetString(key))
			}
			return nil
		}
		keys, err := db.Keys()
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Printf("%-10s %s\n", key, db.GetString(key))
		}
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheSetCmd)
	cacheCmd.AddCommand(cacheGetCmd)
}

func commandCache(cmd *cobra.Command) (cache.Cache, func() error, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	c, closeCache, err := openCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := cache.Bootstrap(c); err != nil {
		closeCache()
		return nil, nil, fmt.Errorf("failed to bootstrap node cache: %w", err)
	}
	return c, closeCache, nil
}
