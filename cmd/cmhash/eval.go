package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cmhash/eval"
	"github.com/hupe1980/cmhash/tracking"
)

func newEvalCmd(g *globalFlags) *cobra.Command {
	var (
		k       int
		workers int
	)

	cmd := &cobra.Command{
		Use:   "eval RUN",
		Short: "Recompute the retrieval mAP of a persisted run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("k") {
				cfg.K = k
			}
			if cmd.Flags().Changed("workers") {
				cfg.EvalWorkers = workers
			}

			snapshotter, err := newSnapshotter(ctx, cfg)
			if err != nil {
				return err
			}
			snap, err := snapshotter.Load(ctx, args[0])
			if err != nil {
				return fmt.Errorf("loading run %s: %w", args[0], err)
			}

			evaluator, err := eval.NewEvaluator(cfg.K, eval.WithWorkers(cfg.EvalWorkers))
			if err != nil {
				return err
			}
			scores, err := evaluator.Evaluate(ctx, snap.S1Codes, snap.S2Codes, snap.Labels)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s: epoch %d, %d items, %d bits\n",
				snap.Checkpoint.Run, snap.Checkpoint.Epoch, snap.Len(), snap.Checkpoint.Bits)
			tracking.WriteScores(out, scores, cfg.K)
			return nil
		},
	}

	cmd.Flags().IntVar(&k, "k", 0, "Retrieval depth for mAP@k")
	cmd.Flags().IntVar(&workers, "workers", 0, "Evaluation workers")

	return cmd
}

func newRunsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List persisted runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig(g)
			if err != nil {
				return err
			}
			snapshotter, err := newSnapshotter(ctx, cfg)
			if err != nil {
				return err
			}
			runs, err := snapshotter.Runs(ctx)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
}
