package serviceerrs

import (
	"errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConnection = errors.New("storage is unreachable")
	ErrConstraint = errors.New("storage constraint violated")
	ErrUnexpected = errors.New("unexpected storage failure")
)

type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindConnection
	KindConstraint
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnection:
		return "connection"
	case KindConstraint:
		return "constraint"
	case KindNotFound:
		return "not found"
	default:
		return "unexpected"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindConnection:
		return ErrConnection
	case KindConstraint:
		return ErrConstraint
	case KindNotFound:
		return ErrNotFound
	default:
		return ErrUnexpected
	}
}

// RepositoryError is the only error a repository returns. It names the
// failed operation and the failure kind, and never carries the driver error:
// storage detail stays in the logs.
type RepositoryError struct {
	Op   string
	Kind ErrorKind
}

func NewRepositoryError(op string, kind ErrorKind) *RepositoryError {
	return &RepositoryError{
		Op:   op,
		Kind: kind,
	}
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + e.Kind.sentinel().Error()
}

// Is lets errors.Is match the kind sentinels.
func (e *RepositoryError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf reports the kind of a repository error, or KindUnexpected for any
// other error.
func KindOf(err error) ErrorKind {
	var repoErr *RepositoryError
	if errors.As(err, &repoErr) {
		return repoErr.Kind
	}
	return KindUnexpected
}
