package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"toiletsync/internal/app"
	"toiletsync/internal/bootstrap"
	"toiletsync/internal/regions"
	"toiletsync/internal/shared"
	mysqlrepo "toiletsync/internal/storage/mysql"
)

func newRootCmd(cfg shared.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "syncctl",
		Short:         "Run and inspect restroom store catalog syncs",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		regionsCmd(),
		batchCmd(cfg),
		districtCmd(cfg),
		cityCmd(cfg),
		allCmd(cfg),
		migrateCmd(cfg),
		showCmd(cfg),
	)
	return root
}

// withDeps validates cfg, opens every backend and runs fn under a signal-aware context.
func withDeps(cfg shared.Config, fn func(ctx context.Context, d *bootstrap.Deps) error) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.Close()
	return fn(app.WithRunID(ctx, ""), d)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func regionsCmd() *cobra.Command {
	var (
		city string
		size int
	)
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the regions in batch order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := regions.Default()
			if city != "" && !reg.IsCity(city) {
				return fmt.Errorf("unknown city %q (known: %v)", city, reg.Cities())
			}
			if size <= 0 {
				size = app.DefaultBatchSize
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tLABEL\tCITY\tBATCH")
			for i, r := range reg.All() {
				if city != "" && r.City != city {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", r.ID, r.Name, r.Label, r.City, i/size)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&city, "city", "", "only list regions of this city key")
	cmd.Flags().IntVar(&size, "batch-size", app.DefaultBatchSize, "batch size used for the BATCH column")
	return cmd
}

func batchCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <index>",
		Short: "Sync one batch window and print the next index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("batch index: %w", err)
			}
			return withDeps(cfg, func(ctx context.Context, d *bootstrap.Deps) error {
				res, err := d.Sync.RunBatch(ctx, idx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func districtCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "district <id>",
		Short: "Sync a single region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cfg, func(ctx context.Context, d *bootstrap.Deps) error {
				res, err := d.Sync.RunSingleRegion(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func cityCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "city <key>",
		Short: "Sync every region of one city",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cfg, func(ctx context.Context, d *bootstrap.Deps) error {
				res, err := d.Sync.RunCity(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}
}

func allCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Walk every batch from 0 until the region list is exhausted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cfg, func(ctx context.Context, d *bootstrap.Deps) error {
				batches, err := d.Sync.RunAll(ctx)
				log.Info().Str("run_id", app.RunID(ctx)).Int("batches", len(batches)).Msg("full pass finished")
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), batches)
			})
		},
	}
}

func migrateCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply MySQL catalog migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := bootstrap.OpenMySQL(cmd.Context(), cfg.MySQLDSN)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := mysqlrepo.Migrate(db); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func showCmd(cfg shared.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show [poi-id]",
		Short: "Print one catalog entry, or the sync status when no id is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cfg, func(ctx context.Context, d *bootstrap.Deps) error {
				if len(args) == 1 {
					e, err := d.Query.GetEntry(ctx, args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), e)
				}
				st, err := d.Query.Status(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), st)
			})
		},
	}
}
