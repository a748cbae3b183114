package main

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"stageflow/internal/config"
	"stageflow/internal/dataset"
	"stageflow/internal/logging"
	"stageflow/internal/store"
)

const importLockName = "stageflow-import"

func newImportCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a JSON workspace export into the local SQLite store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve dataset path: %w", err)
			}
			ds, err := dataset.Load(path)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath(importLockName))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire import lock: %w", err)
			}
			if !locked {
				return errors.New("another stageflow import is already running")
			}
			defer func() { _ = lock.Unlock() }()

			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			result, err := st.Import(cmd.Context(), ds)
			if err != nil {
				return err
			}
			logger.Info("dataset imported",
				logging.String("batch_id", result.BatchID),
				logging.String("source", result.Source),
				logging.Int("jobs", result.Jobs),
				logging.Int("runs", result.Runs),
			)

			if asJSON {
				return writeJSON(cmd, result)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s into %s\n", path, st.Path())
			fmt.Fprintf(out, "Batch: %s\n", result.BatchID)
			fmt.Fprintln(out, renderTable(tableSpec{
				Headers: []string{"Records", "Count"},
				Aligns:  []columnAlignment{alignLeft, alignRight},
				Rows: [][]string{
					{"Workflows", formatCount(result.Workflows)},
					{"Workcenters", formatCount(result.Workcenters)},
					{"Jobs", formatCount(result.Jobs)},
					{"Runs", formatCount(result.Runs)},
				},
			}))
			if cfg.Source.Driver != config.DriverSQLite {
				fmt.Fprintf(out, "Note: source.driver is %q; reports will not read the SQLite store.\n", cfg.Source.Driver)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
