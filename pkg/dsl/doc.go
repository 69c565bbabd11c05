/*
Package dsl provides a fluent builder for Stitch graph models.

Fragments are independently built automata. Referencing a node that already
belongs to another fragment merges the two fragments into one; a call edge
enters a fragment as a callable sub-automaton and resumes at its target node
once the sub-automaton reaches an end node.

Example usage:

	b := dsl.New()

	client := b.Fragment("client")
	client.Node("C1").RequestStart().On("send", "C2")
	client.Node("C2").Terminal("SUCCESS")

	server := b.Fragment("server")
	server.Node("S1").Start().On("recv", "S2")
	server.Node("S2").End()

	b.Thread("client", "client")
	b.Thread("server", "server")

	b.Join("rpc").From("client.send").To("server.recv").Remote().On("req_id", "request")

	model, err := b.Build()
*/
package dsl
