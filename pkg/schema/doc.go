// Package schema describes how two log events are recognized as the two ends of
// the same causal link.
//
// A Schema is an ordered list of key pairs. Each pair names a variable on the
// emitting side and a variable on the receiving side; the two events match when
// every pair carries equal values:
//
//	s := schema.Schema{
//	    schema.Key("tid"),          // tid == tid
//	    schema.Pair{From: "req_id", To: "request"},
//	}
//
//	if s.Match(sender, receiver) {
//	    // link them
//	}
//
// The reserved "request" variable is treated leniently: when either side does not
// carry it the pair is skipped, so links across request boundaries can still be
// resolved later by the request assembler.
//
// Schemas can also be parsed from their textual form ("tid", "req_id=request"):
//
//	s, err := schema.Parse([]string{"tid", "req_id=request"})
//
// This package has no dependencies beyond the Go standard library.
package schema
