// Package testutil provides fixtures for tests only: a four-RVD alphabet,
// random TALE models whose scores are multiples of 0.25 (so sums are exact),
// random DNA datasets, and brute-force ground truth.
package testutil
