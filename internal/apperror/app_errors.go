package apperror

import "errors"

var (
	ErrIllegalMove         = errors.New("illegal move")
	ErrConfiguration       = errors.New("invalid configuration")
	ErrInvariantViolation  = errors.New("invariant violation")
	ErrMatchFinished       = errors.New("match is already finished")
	ErrMarkerTaken         = errors.New("marker is already taken")
	ErrAvatarTaken         = errors.New("avatar is already taken")
	ErrNoIdentityAvailable = errors.New("no free identity left")
)
