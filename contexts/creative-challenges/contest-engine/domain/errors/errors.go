package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is against these.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrValidation          = errors.New("validation failed")
	ErrContestNotOpen      = errors.New("contest is not open for submissions")
	ErrDuplicateSubmission = errors.New("user already submitted to this contest")
	ErrVotingClosed        = errors.New("voting window is closed")
	ErrDuplicateVote       = errors.New("user already voted for this submission")
	ErrRateLimited         = errors.New("too many votes from this ip address")
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("concurrent state change")
)

var (
	ErrContestNotFound    = fmt.Errorf("contest %w", ErrNotFound)
	ErrSubmissionNotFound = fmt.Errorf("submission %w", ErrNotFound)
	ErrVoteNotFound       = fmt.Errorf("vote %w", ErrNotFound)

	ErrInvalidMedia      = fmt.Errorf("%w: media url must be an absolute url", ErrValidation)
	ErrInvalidPrizeTable = fmt.Errorf("%w: invalid prize table", ErrValidation)
	ErrInvalidSchedule   = fmt.Errorf("%w: invalid contest schedule", ErrValidation)

	ErrContestImmutable = fmt.Errorf("%w: contest can no longer be modified", ErrForbidden)
)
