package binding

import "errors"

// Causes attached to diagnostics. None of them ever reaches callers of the
// lookup operations, which only report absence.
var (
	ErrArtifactNotFound  = errors.New("binding: artifact not found")
	ErrConstruct         = errors.New("binding: artifact construction failed")
	ErrWrongKind         = errors.New("binding: artifact has the wrong kind")
	ErrMemberNotFound    = errors.New("binding: member not found")
	ErrSignatureMismatch = errors.New("binding: member signature mismatch")
	ErrInvocation        = errors.New("binding: member invocation failed")
	ErrResultShape       = errors.New("binding: member returned an unusable value")
)
