package batch

import "fmt"

// Stage names the processing step a document failed in.
type Stage string

const (
	StageOpen     Stage = "open"
	StageOCR      Stage = "ocr"
	StageExtract  Stage = "extract"
	StageValidate Stage = "validate"
	StageExport   Stage = "export"
	StagePersist  Stage = "persist"
)

// DocumentError is a per-document failure. It never aborts the batch; the
// runner records it and moves on to the next file.
type DocumentError struct {
	Path  string
	Stage Stage
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Stage, e.Cause)
}

func (e *DocumentError) Unwrap() error { return e.Cause }

func fail(path string, stage Stage, cause error) *DocumentError {
	return &DocumentError{Path: path, Stage: stage, Cause: cause}
}
