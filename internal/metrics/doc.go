// Package metrics holds the Prometheus collectors and the OpenTelemetry
// tracer shared by the upstream clients, the orchestrator and the server.
package metrics
