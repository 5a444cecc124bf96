// Package metric records Prometheus metrics for confstore client invocations.
//
// A CLI process is short-lived, so nothing is served over HTTP. The registry
// can instead be written in the node-exporter textfile format:
//
//	confstore_client_requests_total{command="erase",outcome="not_found"} 1
//	confstore_client_request_duration_seconds_bucket{command="erase",le="0.005"} 1
package metric
