package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pursewatch-dev/pursewatch/internal/analyzer"
	"github.com/pursewatch-dev/pursewatch/internal/config"
	"github.com/pursewatch-dev/pursewatch/internal/page"
)

type scanResult struct {
	File          string   `json:"file"`
	Category      string   `json:"category"`
	Signals       []string `json:"signals"`
	Score         int      `json:"score"`
	IsPaymentSite bool     `json:"is_payment_site"`
}

func scanCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan <dir>",
		Short: "Batch-analyze a directory of saved page snapshots",
		Long: `Scan walks a directory of saved HTML snapshots and scores each one,
useful for evaluating detector coverage against a page corpus.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := config.ExpandPath(args[0])

			var files []string
			err := filepath.WalkDir(dir, func(path string, d os.DirEntry, werr error) error {
				if werr != nil {
					return werr
				}
				if d.IsDir() {
					return nil
				}
				ext := strings.ToLower(filepath.Ext(path))
				if ext == ".html" || ext == ".htm" {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to walk %s: %w", dir, err)
			}
			if len(files) == 0 {
				return fmt.Errorf("no HTML snapshots found under %s", dir)
			}

			bar := progressbar.NewOptions(len(files),
				progressbar.OptionSetDescription("Scanning snapshots"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)

			a := analyzer.NewSiteAnalyzer()
			results := make([]scanResult, 0, len(files))
			paymentSites := 0

			for _, file := range files {
				_ = bar.Add(1)

				data, rerr := os.ReadFile(file)
				if rerr != nil {
					continue
				}
				snap, serr := page.NewSnapshot("file://"+file, "", string(data))
				if serr != nil {
					continue
				}

				result := a.Score(snap)
				if result.IsPaymentSite {
					paymentSites++
				}
				results = append(results, scanResult{
					File:          file,
					Score:         result.Score,
					IsPaymentSite: result.IsPaymentSite,
					Category:      result.Category,
					Signals:       result.Signals,
				})
			}
			_ = bar.Finish()

			if asJSON {
				encoded, merr := json.MarshalIndent(results, "", "  ")
				if merr != nil {
					return fmt.Errorf("failed to encode results: %w", merr)
				}
				fmt.Println(string(encoded))
				return nil
			}

			fmt.Println(titleStyle.Render("Scan complete"))
			fmt.Printf("%s %d snapshots, %s payment-capable\n",
				boldStyle.Render("Scanned:"),
				len(results),
				positiveStyle.Render(fmt.Sprintf("%d", paymentSites)))
			for _, r := range results {
				marker := subtleStyle.Render("·")
				if r.IsPaymentSite {
					marker = positiveStyle.Render("✓")
				}
				fmt.Printf("  %s %s score=%d category=%s\n", marker, filepath.Base(r.File), r.Score, r.Category)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	return cmd
}
