// Package eval scores Hamming retrieval rankings against multi-label ground truth.
//
// AveragePrecision treats a retrieved item as relevant when it shares at least
// one class with the query. WeightedAveragePrecision grades relevance by the
// fraction of the query's classes the item shares. Both are per-query scores;
// Evaluator sums them over every query of a leave-one-out run in the four
// directions S1→S1, S1→S2, S2→S1 and S2→S2 and divides by the query count.
package eval
