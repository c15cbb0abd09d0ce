package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/container"
	"pokedex/catalog/internal/domain"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type app struct {
	configDir string
	debug     bool
	container *container.Container
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:          "pokedex",
		Short:        "Browse and sync the PokeAPI catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if a.container == nil {
				return nil
			}
			return a.container.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", ".", "directory containing config.yaml")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newSyncCmd(a),
		newExportCmd(a),
	)

	return cmd
}

func (a *app) setup(ctx context.Context) error {
	if a.debug {
		log.SetLevel(log.DebugLevel)
	}

	// Real environment variables win over .env
	if err := godotenv.Load(); err == nil {
		log.Debug("Loaded environment from .env")
	}

	cfg, err := config.LoadFrom(a.configDir)
	if err != nil {
		return err
	}
	log.Debug("Configuration loaded successfully")

	a.container = container.New(ctx, cfg)
	return nil
}

func newListCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit > 0 {
				a.container.Config.PokeAPI.Limit = limit
			}

			entries, err := a.container.Service().List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, entry := range entries {
				fmt.Fprintf(w, "#%d\t%s\t%s\n", entry.ID(), domain.DisplayName(entry.Name), entry.ImageURL())
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries to fetch (defaults to pokeapi.limit)")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var stored bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the English description of a species",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid id %q", args[0])
			}

			var (
				name        string
				description string
				found       bool
			)
			if stored {
				if err := a.container.ConnectStorage(cmd.Context()); err != nil {
					return err
				}
				species, err := a.container.Service().Stored(cmd.Context(), id)
				if err != nil {
					return err
				}
				name, description, found = species.Name, species.Description, species.HasDescription
			} else {
				entry, err := a.container.Service().Entry(cmd.Context(), id)
				if err != nil {
					return err
				}
				if entry != nil {
					name = entry.Name
				}
				description, found, err = a.container.Service().Describe(cmd.Context(), id)
				if err != nil {
					return err
				}
			}

			header := fmt.Sprintf("#%d", id)
			if name != "" {
				header += " " + domain.DisplayName(name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\nDescription:\n%s\n",
				header, domain.DeriveImageURL(id), domain.DisplayDescription(description, found))
			return nil
		},
	}

	cmd.Flags().BoolVar(&stored, "stored", false, "read the description saved by sync instead of PokeAPI")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Store every catalog entry with its description in Postgres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.container.ConnectStorage(cmd.Context()); err != nil {
				return err
			}

			result, err := a.container.Service().Sync(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d in catalog, %d enqueued, %d saved, %d failed\n",
				result.RunID, result.Catalog, result.Enqueued, result.Saved, result.Failed)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Upload Parquet and CSV snapshots of stored species to S3",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.container.ConnectStorage(cmd.Context()); err != nil {
				return err
			}
			if err := a.container.ConnectExport(cmd.Context()); err != nil {
				return err
			}

			result, err := a.container.Service().Export(cmd.Context())
			if err != nil {
				return err
			}
			if result == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
				return nil
			}

			fmt.Fprintf(cmd.OutOrStdout(), "exported %d species to %s and %s\n", result.Rows, result.ParquetKey, result.CSVKey)
			return nil
		},
	}
}
