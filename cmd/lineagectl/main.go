// lineagectl is the operator's CLI: it runs detection, merge and undo
// directly against the configured record store, bypassing the HTTP layer.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lifeloom/lineage/internal/config"
	"github.com/lifeloom/lineage/internal/core"
	"github.com/lifeloom/lineage/internal/core/model"
	"github.com/lifeloom/lineage/internal/store"
)

var cfgPath string

func main() {
	root := &cobra.Command{
		Use:           "lineagectl",
		Short:         "Administer the lineage person graph",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "config/config.toml", "path to config file")

	root.AddCommand(peopleCommand(), detectCommand(), mergeCommand(), undoCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newResolver(ctx context.Context) (*core.Resolver, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	recordStore, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	resolver := core.NewResolver(recordStore, nil, "", cfg.Detection.Threshold, cfg.Concurrency.Ingest, zap.NewNop())
	cleanup := func() { _ = recordStore.Close(ctx) }
	return resolver, cleanup, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func peopleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "people <project-id>",
		Short: "List a project's person records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolver, cleanup, err := newResolver(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			people, err := resolver.ListPeople(ctx, args[0])
			if err != nil {
				return err
			}
			return printJSON(people)
		},
	}
}

func detectCommand() *cobra.Command {
	var threshold float64
	cmd := &cobra.Command{
		Use:   "detect <project-id>",
		Short: "Detect duplicate person groups",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolver, cleanup, err := newResolver(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := resolver.DetectDuplicates(ctx, args[0], threshold)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum pair score (0 = configured default)")
	return cmd
}

func mergeCommand() *cobra.Command {
	var strategy string
	cmd := &cobra.Command{
		Use:   "merge <project-id> <primary-id> <secondary-id>",
		Short: "Merge the secondary person into the primary",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolver, cleanup, err := newResolver(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			log, skipped, err := resolver.MergePeople(ctx, args[0], args[1], args[2], model.MergeStrategy(strategy))
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"merge_log_id":         log.ID,
				"skipped_associations": skipped,
			})
		},
	}
	cmd.Flags().StringVar(&strategy, "strategy", string(model.StrategyKeepPrimary), "merge strategy")
	return cmd
}

func undoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "undo <project-id> <merge-log-id>",
		Short: "Undo a previously applied merge",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			resolver, cleanup, err := newResolver(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			restored, skipped, err := resolver.UndoMerge(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"restored_person":      restored,
				"skipped_associations": skipped,
			})
		},
	}
}
