package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by VersionError through errors.Is.
var (
	ErrTooNew = errors.New("diagram schema version is too new")
	ErrTooOld = errors.New("diagram schema version is too old")
)

// VersionKind tells which side of the supported window a version fell on.
type VersionKind int

// Version error kinds.
const (
	TooNew VersionKind = iota
	TooOld
)

func (k VersionKind) String() string {
	if k == TooOld {
		return "too old"
	}
	return "too new"
}

// VersionError reports an envelope whose schemaVersion is outside the
// supported window.
type VersionError struct {
	Version int
	Current int
	Kind    VersionKind
}

func (e *VersionError) Error() string {
	if e.Kind == TooOld {
		return fmt.Sprintf("diagram schema version %d is too old (oldest supported is %d): open and save it with an intermediate release first",
			e.Version, e.Current-SupportedWindow)
	}
	return fmt.Sprintf("diagram schema version %d is too new (this build reads up to %d): update the application",
		e.Version, e.Current)
}

// Is matches ErrTooNew or ErrTooOld according to Kind.
func (e *VersionError) Is(target error) bool {
	switch target {
	case ErrTooNew:
		return e.Kind == TooNew
	case ErrTooOld:
		return e.Kind == TooOld
	}
	return false
}
