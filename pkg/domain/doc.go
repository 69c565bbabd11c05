/*
Package domain contains the core domain models of the stitch trace reconstruction engine.

It defines the entities shared by the graph model, the replay, join, assembly and clock
engines. This package is kept pure and free of external dependencies like I/O or
persistence, following Hexagonal Architecture principles.

# Key Entities

  - Node, Edge: states and transitions of the expected-behavior automaton, addressed by
    arena index (NodeID, EdgeID) so cyclic graphs need no owning pointers.
  - JoinSpec: a declared causal link between an emitting edge and a receiving edge.
  - Line: one parsed log record with reserved fields and free-form variables.
  - Pace: one log line matched against one automaton edge.
  - Interval: a span between two Paces, either inside a thread or across a join.
  - ThreadInstance: one automaton run over a thread's lines.
  - RequestInstance: the threads and joins that make up one logical request.
*/
package domain
