// Package dataset provides paired S1/S2 batches to the trainer.
//
// A Loader hands out one Iterator per epoch; Next returns io.EOF when the
// epoch is exhausted. SliceLoader serves in-memory samples, optionally
// shuffled per epoch and passed through a Transform such as Normalizer.
// ReadJSONL and WriteJSONL move samples to and from the line-delimited
// interchange format used by the command line tool.
package dataset
