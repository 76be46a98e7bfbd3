package dtb

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is matched by every *InvalidInputError via errors.Is.
var ErrInvalidInput = errors.New("invalid DTB input")

// Reason tells why a line was rejected.
type Reason int

const (
	// ReasonUnknownLine means the line matches none of the three shapes.
	ReasonUnknownLine Reason = iota

	// ReasonTeamWithoutGroup means a well-formed Team line had no Group before it.
	ReasonTeamWithoutGroup

	// ReasonPlayerWithoutTeam means a well-formed Player line had no Team before it.
	ReasonPlayerWithoutTeam
)

func (r Reason) String() string {
	switch r {
	case ReasonUnknownLine:
		return "unknown line type"
	case ReasonTeamWithoutGroup:
		return "team without group"
	case ReasonPlayerWithoutTeam:
		return "player without team"
	default:
		return fmt.Sprintf("Reason(%d)", int(r))
	}
}

// InvalidInputError reports a DTB line that could not be read.
type InvalidInputError struct {
	// Line is the raw offending line, terminator included.
	Line string

	// Reason is the rejection cause.
	Reason Reason

	// Detail optionally narrows a ReasonUnknownLine down to the part of the
	// grammar that failed, e.g. "missing separator".
	Detail string
}

// Error implements the error interface.
func (e *InvalidInputError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s): %q", e.Reason, e.Detail, e.Line)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

// Is lets errors.Is(err, ErrInvalidInput) match.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
