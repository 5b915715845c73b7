package models

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrAlreadyFriends        = errors.New("users are already friends")
	ErrRequestAlreadyPending = errors.New("pending friend request already exists")
	ErrUnauthorized          = errors.New("not allowed to resolve this request")
	ErrAlreadyResolved       = errors.New("friend request already resolved")
	ErrSelfRequest           = errors.New("cannot send request to yourself")
	ErrInvalidTransition     = errors.New("invalid request status transition")

	// ErrTransient marks storage faults on writes; state is unchanged.
	ErrTransient = errors.New("temporary storage failure")
)
