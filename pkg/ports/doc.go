/*
Package ports defines the driven ports (interfaces) of the Stitch pipeline.

These interfaces decouple the reconstruction engines from where lines come from
and where assembled requests go.

# Key Interfaces

  - LineSource: yields the time-sorted lines of every (host, target, thread).
  - RequestStore: persists request summaries per run.
*/
package ports
