package wizard

import "errors"

var (
	ErrStepNotInSequence = errors.New("STEP_NOT_IN_SEQUENCE")
	ErrStepInvalid       = errors.New("STEP_INVALID")
	ErrNotReady          = errors.New("NOT_READY")
	ErrAlreadySubmitted  = errors.New("ALREADY_SUBMITTED")
	ErrNoNextStep        = errors.New("NO_NEXT_STEP")
	ErrNoPreviousStep    = errors.New("NO_PREVIOUS_STEP")
	ErrNoSubmitter       = errors.New("no submitter configured")
)
