package assessments

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrNotCompleted   = errors.New("assessment not completed")
	ErrReportNotReady = errors.New("report not ready")
	ErrCorrupt        = errors.New("stored assessment is corrupt")
)
