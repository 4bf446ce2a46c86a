package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotebox/internal/app"
	"github.com/jsamuelsen/quotebox/internal/seed"
)

func seedCmd(profile *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load quotes from a YAML file",
		Long: `Load quotes from a YAML file of the form

  quotes:
    - text: "Here's looking at you, kid."
      source: Casablanca
      type: movie
      weight: 3

Entries go through the normal submission rules. Rejected entries are
logged and skipped.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(*profile)
			if err != nil {
				return err
			}

			logger := newLogger(cfg)

			entries, err := seed.LoadFile(file)
			if err != nil {
				return err
			}

			store, err := openStore(ctx, &cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.Migrate(ctx); err != nil {
				return err
			}

			svc := app.NewQuoteService(app.QuoteServiceConfig{Store: store, Logger: logger})

			res, err := seed.Apply(ctx, svc, entries, logger)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "seed complete",
				slog.String("file", file),
				slog.Int("added", res.Added),
				slog.Int("rejected", res.Rejected),
			)

			fmt.Fprintf(cmd.OutOrStdout(), "added %d, rejected %d\n", res.Added, res.Rejected)

			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "configs/seeds.yaml", "seed file")

	return cmd
}
