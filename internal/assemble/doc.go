// Package assemble groups joined thread instances into request instances,
// reconstructs each request's main path and validates its structure.
package assemble
