package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func blacklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blacklist",
		Short: "Manage the domain deny-list",
		Long: `The blacklist holds domain substrings that are never analyzed.
Changes take effect for sessions started after the change.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List blacklisted domains",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			domains, err := store.GetBlacklist(ctx)
			if err != nil {
				return fmt.Errorf("failed to load blacklist: %w", err)
			}
			if len(domains) == 0 {
				fmt.Println(subtleStyle.Render("Blacklist is empty."))
				return nil
			}
			fmt.Println(titleStyle.Render("Blacklisted domains"))
			for _, domain := range domains {
				fmt.Printf("  %s\n", domain)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <domain>",
		Short: "Add a domain substring to the blacklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.AddBlacklistDomain(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to add domain: %w", err)
			}
			fmt.Printf("%s %s\n", positiveStyle.Render("Added"), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <domain>",
		Short: "Remove a domain substring from the blacklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.RemoveBlacklistDomain(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to remove domain: %w", err)
			}
			fmt.Printf("%s %s\n", positiveStyle.Render("Removed"), args[0])
			return nil
		},
	})

	return cmd
}
