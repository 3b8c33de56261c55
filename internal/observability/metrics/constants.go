// Package metrics provides Prometheus collectors for keyclip sessions.
package metrics

import "time"

// Operation names recorded through the Recorder interface.
const (
	// OpRecord is a capture take from start to stop.
	OpRecord = "record"
	// OpImport is decoding imported audio bytes.
	OpImport = "import"
	// OpDecode is a single decode service call.
	OpDecode = "decode"
	// OpRender is one frame render.
	OpRender = "render"
	// OpExport is a segment bundle export.
	OpExport = "export"
	// OpExportTrimmed is a trim range export.
	OpExportTrimmed = "export_trimmed"
	// OpToggle is a selection toggle from a click or time.
	OpToggle = "toggle"
)

// Status values for RecordOperation.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusMiss    = "miss"
)

// Histogram bucket parameters.
const (
	BucketStart100us = 0.0001
	BucketFactor2    = 2
	BucketCount14    = 14
)

// ShutdownTimeout bounds the metrics HTTP server shutdown.
const ShutdownTimeout = 5 * time.Second
