package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNothingPlaying     = fmt.Errorf("%w: nothing is playing", ErrNotFound)
	ErrDuplicate          = errors.New("duplicate sound name")
	ErrInvalidFormat      = errors.New("invalid audio format")
	ErrEmptyCatalog       = errors.New("sound catalog is empty")
	ErrNotInVoice         = errors.New("not in a voice channel")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrStorageUnavailable = errors.New("sound storage unavailable")
)
