package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrRateLimited   = errors.New("rate limited")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidPrice  = errors.New("price must be a positive quantity")
	ErrInvalidFeeBps = errors.New("fee basis points out of range [0,10000]")
	ErrUnknownStatus = errors.New("unknown trade status code")
	ErrNotInEscrow   = errors.New("trade never entered escrow")
	ErrContextDone   = errors.New("context cancelled")
	ErrLockHeld      = errors.New("lock already held")
	ErrSigningFailed = errors.New("signing failed")
	ErrOracleUnavail = errors.New("reputation oracle unavailable")
)
