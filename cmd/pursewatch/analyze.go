package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pursewatch-dev/pursewatch/internal/analyzer"
)

func analyzeCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <file-or-url>",
		Short: "Score a single page snapshot for payment capability",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			snap, err := loadSnapshot(ctx, args[0])
			if err != nil {
				return err
			}

			a := analyzer.NewSiteAnalyzer()
			result := a.Score(snap)
			site := analyzer.Identify(snap)
			site.Category = result.Category

			if asJSON {
				out := struct {
					Site     any `json:"site"`
					Analysis any `json:"analysis"`
				}{site, result}
				encoded, merr := json.MarshalIndent(out, "", "  ")
				if merr != nil {
					return fmt.Errorf("failed to encode result: %w", merr)
				}
				fmt.Println(string(encoded))
				return nil
			}

			verdict := negativeStyle.Render("not a payment site")
			if result.IsPaymentSite {
				verdict = positiveStyle.Render("payment site")
			}

			fmt.Println(titleStyle.Render(site.Name) + subtleStyle.Render(" ("+site.Hostname+")"))
			fmt.Printf("%s %s\n", boldStyle.Render("Verdict:"), verdict)
			fmt.Printf("%s %d\n", boldStyle.Render("Score:"), result.Score)
			fmt.Printf("%s %s\n", boldStyle.Render("Category:"), result.Category)
			if len(result.Signals) > 0 {
				fmt.Printf("%s %s\n", boldStyle.Render("Signals:"), strings.Join(result.Signals, ", "))
			} else {
				fmt.Printf("%s %s\n", boldStyle.Render("Signals:"), subtleStyle.Render("none"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the result as JSON")
	return cmd
}
