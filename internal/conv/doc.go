// Package conv provides checked integer conversions for values read from or
// written to snapshot headers.
//
// For conversions that are provably safe by construction (loop indices bounded
// by a slot count), use a direct cast instead.
package conv
