// Package core provides the profiling and chart-aggregation engine of
// datadash and the service that connects it to ingestion and storage.
//
// The engine functions are pure and operate on an immutable [table.Table],
// so they can be called from web handlers, tests or other tools without
// setup and concurrently without locking.
//
// # Engine
//
//   - [InferColumns] classifies columns as numeric, datetime or categorical.
//     Only the first values of a column are sampled for date detection.
//   - [Summarize] and [Describe] compute count, mean, sample standard
//     deviation and the five-number summary of numeric columns, and distinct
//     sample values for the rest.
//   - [PrepareChart] turns a [ChartQuery] into a label/value series: grouped
//     aggregation for bar, line and radar charts, value frequencies for pie
//     and doughnut charts, and raw values when only a y column is given.
//   - [BuildProfile] bundles columns, summary and the leading sample rows.
//
// Query edge cases never fail: unknown columns are treated as absent and
// unknown chart types give an empty result.
//
// # Service
//
// [Service] decodes uploads through the ingest package, profiles them and
// stores the first [SnapshotRowLimit] rows under an opaque handle:
//
//	res, err := svc.Ingest(ctx, "sales.csv", file)
//	chart, err := svc.Chart(ctx, res.Handle, core.ChartQuery{
//	    X: "region", Y: "sales", Type: core.ChartBar, Agg: core.AggSum,
//	})
//
// Concurrent ingests are bounded by an [IngestLimiter]. Snapshots expire after
// a TTL enforced by [Service.StartSnapshotJanitor]; charting an expired handle
// fails with store.ErrDataExpired.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE005: File errors (size, format, decoding, missing, empty)
//   - DATA001: Uploaded data expired
//   - ING001: Too many concurrent uploads
//   - DASH001-DASH003: Dashboard errors (name, config, not found)
//   - REQ001-REQ002: Request cancelled or timed out
//   - RATE001: Rate limited
package core
