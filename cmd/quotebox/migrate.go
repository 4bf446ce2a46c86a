package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func migrateCmd(profile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(*profile)
				if err != nil {
					return err
				}

				store, err := openStore(cmd.Context(), &cfg.Database)
				if err != nil {
					return err
				}
				defer store.Close()

				applied, err := store.Migrate(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)

				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(*profile)
				if err != nil {
					return err
				}

				store, err := openStore(cmd.Context(), &cfg.Database)
				if err != nil {
					return err
				}
				defer store.Close()

				if err := store.Rollback(cmd.Context()); err != nil {
					return err
				}

				fmt.Fprintln(cmd.OutOrStdout(), "rolled back 1 migration")

				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(*profile)
				if err != nil {
					return err
				}

				store, err := openStore(cmd.Context(), &cfg.Database)
				if err != nil {
					return err
				}
				defer store.Close()

				statuses, err := store.MigrationStatus(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "VERSION\tSTATE\tFILE")

				for _, st := range statuses {
					state := "pending"
					if st.Applied {
						state = "applied"
					}

					fmt.Fprintf(w, "%d\t%s\t%s\n", st.Version, state, st.Path)
				}

				return w.Flush()
			},
		},
	)

	return cmd
}
