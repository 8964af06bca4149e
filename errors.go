package staged

import "errors"

// Sentinel errors for programmatic error handling. The engine wraps them with
// the offending name; match with [errors.Is].
var (
	ErrStageAlreadyDefined  = errors.New("stage already defined")
	ErrUnknownFormat        = errors.New("unknown format")
	ErrRequiredOptionNotSet = errors.New("required option not set")
	ErrTemplateNotDefined   = errors.New("template not defined")
	ErrReportNotSet         = errors.New("report not set")
	ErrUnknownReport        = errors.New("unknown report")
	ErrReportDefined        = errors.New("report already defined")
)
