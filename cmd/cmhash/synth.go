package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/hupe1980/cmhash/dataset"
)

func newSynthCmd() *cobra.Command {
	var (
		n    int
		seed int64
		out  string
		sc   = dataset.DefaultSyntheticConfig
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Write a synthetic paired JSONL dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			samples, err := dataset.Synthetic(rand.New(rand.NewSource(seed)), n, sc)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := createFile(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := dataset.WriteJSONL(w, samples); err != nil {
				return fmt.Errorf("writing samples: %w", err)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVarP(&n, "samples", "n", 100, "Number of samples")
	fl.Int64Var(&seed, "seed", 42, "Random seed")
	fl.StringVarP(&out, "output", "o", "-", "Output file (- for stdout)")
	fl.IntVar(&sc.Classes, "classes", sc.Classes, "Label dimension")
	fl.IntVar(&sc.MaxActive, "max-active", sc.MaxActive, "Maximum positive classes per sample")
	fl.IntVar(&sc.S1Dim, "s1-dim", sc.S1Dim, "S1 feature width")
	fl.IntVar(&sc.S2Dim, "s2-dim", sc.S2Dim, "S2 feature width")
	fl.Float64Var(&sc.Noise, "noise", sc.Noise, "Feature noise standard deviation")

	return cmd
}
