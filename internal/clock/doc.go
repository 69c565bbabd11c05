// Package clock derives per-host offsets that make every remote join run forward in time.
//
// Each remote join from host A to host B with raw timestamps f and t requires
// t + oB >= f + oA, i.e. oB - oA >= f - t. Relations aggregate the tightest such
// bound per host pair; Solve pins hosts one at a time and propagates the bounds.
package clock
