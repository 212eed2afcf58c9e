package service

// StageOutcome classifies how an enrichment stage ended.
type StageOutcome string

const (
	// StageCompleted means the stage ran and persisted its result
	StageCompleted StageOutcome = "completed"
	// StageFailed means the stage ended in an error; for the
	// transcription stage this also moved the memo to failed
	StageFailed StageOutcome = "failed"
	// StageSkipped means the stage found nothing to do (memo missing a
	// transcript, or already claimed by another run)
	StageSkipped StageOutcome = "skipped"
)

// StageResult is the explicit outcome of a background enrichment
// stage, so callers and tests can assert on it instead of inspecting
// logs. Background schedulers ignore it.
type StageResult struct {
	Outcome StageOutcome
	Err     error
}
