package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pursewatch-dev/pursewatch/internal/analyzer"
	"github.com/pursewatch-dev/pursewatch/internal/bus"
	"github.com/pursewatch-dev/pursewatch/internal/config"
	"github.com/pursewatch-dev/pursewatch/internal/extract"
	"github.com/pursewatch-dev/pursewatch/internal/server"
	"github.com/pursewatch-dev/pursewatch/internal/session"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the detection engine behind the collector HTTP bridge",
		Long: `Serve accepts page lifecycle events from the browser-side collector,
runs one detection engine per page session and streams outbound events
(state updates, detected transactions, cancellations) over SSE.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings := config.LoadSettings()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := store.Close(); cerr != nil {
					slog.Error("failed to close storage", "error", cerr)
				}
			}()

			configStore := config.NewStore(ctx, store, settings.OwnerDomains)

			siteAnalyzer := analyzer.NewSiteAnalyzer(
				analyzer.WithThreshold(settings.ScoreThreshold),
				analyzer.WithCacheTTL(settings.AnalysisCacheTTL),
			)

			eventBus := bus.New()
			manager := server.NewManager(
				session.Config{
					Debounce:            settings.DebounceInterval,
					WatcherTimeout:      settings.WatcherTimeout,
					WatcherPollInterval: settings.WatcherPollInterval,
				},
				session.Deps{
					Store:       configStore,
					Analyzer:    siteAnalyzer,
					Storage:     store,
					Broadcaster: eventBus,
					Extractor:   extract.NewPriceExtractor(),
				},
			)

			srv := server.New(settings.ListenAddr, manager, eventBus)
			return srv.Run(ctx)
		},
	}
	return cmd
}
