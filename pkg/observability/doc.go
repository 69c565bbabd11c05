/*
Package observability exposes Stitch pipeline activity as Prometheus metrics.

Metrics.Hooks plugs the counters into the engine's lifecycle hooks and
ObserveReport records the per-run totals once a run finishes. Batch runs can
persist the registry with prometheus.WriteToTextfile for node-exporter style
collection.
*/
package observability
