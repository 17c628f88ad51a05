package easyHttp

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned by setters given a value outside
	// the set the engine accepts.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOptionKind is returned when a value of the wrong kind is sent
	// for an option.
	ErrOptionKind = errors.New("option value kind mismatch")

	ErrUnknownOption = errors.New("unknown option")
	ErrUnknownInfo   = errors.New("unknown info")

	ErrTooManyRedirects     = errors.New("maximum redirects followed")
	ErrEngineKeyUnsupported = errors.New("engine private keys are not supported")
)
