// Package client holds the HTTP transports to the upstream providers.
//
// DataAPIClient queries the tabular statistical data API. It rewrites the
// endpoint host, renames geo types per endpoint path, builds the geography
// clause from the program's GeoFormat template and falls back to a POST
// through the proxy when the URL grows past the configured length.
// FeatureQueryClient pages through a feature query service.
//
// Both clients share an optional rate limiter, Prometheus collectors and
// OpenTelemetry spans, and log one line per call.
package client
