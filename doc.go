// Package cmhash trains a pair of encoders that map co-registered S1 (radar)
// and S2 (optical) patches to compact binary hash codes, and evaluates them
// with Hamming retrieval and mAP@k.
//
// # Quick Start
//
//	cfg := config.Default()
//	s1, _ := encoder.NewLinear(s1Dim, cfg.Bits, rng)
//	s2, _ := encoder.NewLinear(s2Dim, cfg.Bits, rng)
//	o1, _ := optim.NewAdam(s1.Params())
//	o2, _ := optim.NewAdam(s2.Params())
//
//	trainer, _ := cmhash.NewTrainer(cfg, s1, s2, o1, o2,
//	    cmhash.WithSnapshotter(persistence.NewSnapshotter(store)),
//	    cmhash.WithSink(tracking.NewResultsLog(resultsFile)),
//	)
//	state, err := trainer.Run(ctx, trainLoader, valLoader)
//
// # Training
//
// Every epoch runs a training phase and a validation phase. The training phase
// draws paired batches, computes the composite objective (loss package),
// backpropagates through both encoders and steps both optimizers. The
// validation phase binarizes the logits of every validation item and runs
// leave-one-out retrieval in the four directions S1→S1, S1→S2, S2→S1 and
// S2→S2 (eval package).
//
// # Best Epoch
//
// The plain average mAP of an epoch is compared with the best so far. A
// strictly better epoch replaces the RunState wholesale. At the end of the
// run the best snapshot is persisted if, and only if, some epoch improved.
//
// # Observability
//
// Logging goes through Logger (log/slog). Step, epoch, validation and
// persistence timings go to a MetricsCollector; per-epoch results go to a
// tracking.Sink.
package cmhash
