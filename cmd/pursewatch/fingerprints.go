package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func fingerprintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprints",
		Short: "Inspect the transaction dedup cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recorded transaction fingerprints, newest first",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.ListFingerprints(ctx)
			if err != nil {
				return fmt.Errorf("failed to list fingerprints: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println(subtleStyle.Render("No fingerprints recorded."))
				return nil
			}
			fmt.Println(titleStyle.Render("Recorded fingerprints"))
			for _, entry := range entries {
				fmt.Printf("  %s  %s\n", entry.Fingerprint,
					subtleStyle.Render(entry.CreatedAt.Format("2006-01-02 15:04:05")))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the dedup cache",
		RunE: func(c *cobra.Command, _ []string) error {
			ctx := c.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.ClearFingerprints(ctx); err != nil {
				return fmt.Errorf("failed to clear fingerprints: %w", err)
			}
			fmt.Println(positiveStyle.Render("Dedup cache cleared."))
			return nil
		},
	})

	return cmd
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(c *cobra.Command, _ []string) error {
			store, err := initStorage(c.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Println(positiveStyle.Render("Database is up to date."))
			return nil
		},
	}
}
