// Package hashcode provides the binary code representation shared by
// evaluation, mining and persistence.
//
// Encoders emit real-valued logits in roughly [0,1]; a Binarizer thresholds
// them at 0.5 into a Code. Codes are packed into uint64 words so Hamming
// distance is a popcount of XOR:
//
//	bz := hashcode.NewBinarizer(16)
//	codes, _ := bz.EncodeMatrix(logits) // one Code per row
//	d, _ := hashcode.Distance(codes[0], codes[1])
//
// # Storage format
//
// ceil(bits / 64) uint64 words, little-endian bit packing. Bits beyond the
// code length are always zero so word-wise comparisons are exact.
package hashcode
