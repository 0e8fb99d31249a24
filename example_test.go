package cmhash_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/cmhash"
	"github.com/hupe1980/cmhash/config"
	"github.com/hupe1980/cmhash/dataset"
	"github.com/hupe1980/cmhash/encoder"
	"github.com/hupe1980/cmhash/optim"
	"github.com/hupe1980/cmhash/testutil"
)

func ExampleTrainer() {
	rng := testutil.NewRNG(1)
	sc := dataset.DefaultSyntheticConfig

	samples, _ := dataset.Synthetic(rng.Rand(), 120, sc)
	train, _ := dataset.NewSliceLoader(samples[:80], 20)
	val, _ := dataset.NewSliceLoader(samples[80:], 20)

	cfg := config.Default()
	cfg.Bits = 8
	cfg.K = 5
	cfg.Epochs = 3
	cfg.BatchSize = 20

	s1, _ := encoder.NewLinear(sc.S1Dim, cfg.Bits, rng.Rand())
	s2, _ := encoder.NewLinear(sc.S2Dim, cfg.Bits, rng.Rand())
	o1, _ := optim.NewAdam(s1.Params())
	o2, _ := optim.NewAdam(s2.Params())

	trainer, err := cmhash.NewTrainer(cfg, s1, s2, o1, o2, cmhash.WithRunName("example"))
	if err != nil {
		fmt.Println(err)
		return
	}

	state, err := trainer.Run(context.Background(), train, val)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(trainer.RunName(), state.Improved)
	// Output: example true
}
