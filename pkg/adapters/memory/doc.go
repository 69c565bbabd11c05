// Package memory provides in-memory implementations of the Stitch ports.
package memory
