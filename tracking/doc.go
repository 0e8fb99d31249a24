// Package tracking records per-epoch training and validation results.
//
// A Sink receives one EpochReport per epoch. Implementations in this package
// and its sub-packages:
//
//   - ResultsLog: append-only human-readable results file (tablewriter tables)
//   - sqlite.Series: scalar series in a local SQLite database
//   - dynamo.Series: scalar series in a DynamoDB table
//   - prom.Collector: Prometheus gauges
//
// Multi fans a report out to several sinks.
package tracking
