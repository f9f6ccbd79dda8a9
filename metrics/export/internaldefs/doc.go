// Package internaldefs holds the metric name and bucket definitions shared
// by the exporter implementations. The Prometheus and OTel exporters both
// read from here so a rename or bucket change lands in both at once.
package internaldefs
