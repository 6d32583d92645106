// Package series parses raw series-matrix CSV artifacts into the canonical
// dataset form: a gene × sample numeric matrix plus a group label per sample.
//
// The expected layout is one row per sample:
//
//	samples,type,GENE1,GENE2,...
//	GSM123,normal,7.234,5.001,...
//	GSM124,bladder cancer,8.102,4.872,...
//
// Group labels are derived from the type column: descriptions containing
// "normal" are the normal group, everything else is cancer.
//
// The parser never guesses. A declared sample count that does not match the
// rows, a non-numeric or empty cell, a duplicate sample, or fewer than two
// groups all fail with a reason-coded MalformedError - retrying cannot fix
// malformed source data, so the error is terminal for that dataset.
package series
