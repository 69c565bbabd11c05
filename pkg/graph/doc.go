/*
Package graph holds the Graph Schema Model: the immutable automaton that describes the
permitted event sequences of every thread and the joins between them.

Nodes, edges and fragments live in one arena and refer to each other by index, so cyclic
automata (self loops, retries, recursive sub-automata) need no owning pointers. Fragments
that share a node are merged by reassigning an owner index.

A Draft is filled by a builder (see package dsl) and turned into a Model by Compile, which
runs every build-time check and reports all failures at once:

	model, err := graph.Compile(draft)
	if err != nil {
	    for _, e := range schema.ValidationErrors(err) {
	        log.Println(e)
	    }
	}

A Model is read-only after Compile and safe for concurrent use.
*/
package graph
