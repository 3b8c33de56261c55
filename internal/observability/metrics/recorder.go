package metrics

// Recorder is the minimal metrics surface components depend on, so tests can
// substitute a fake.
type Recorder interface {
	// RecordOperation records an operation outcome (StatusSuccess, StatusError, ...).
	RecordOperation(operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records a failed operation by error category.
	RecordError(operation, errorType string)
}
