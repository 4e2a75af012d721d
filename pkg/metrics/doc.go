/*
Package metrics exposes the Prometheus counters, gauges, and histograms
used to observe the cache engine, the fetch gateway, and the persistent
store. Metrics are package-level vars registered on init; call Handler to
mount them behind an HTTP endpoint (see cmd/metacachectl).
*/
package metrics
