package session

import "errors"

var (
	ErrNameTaken    = errors.New("name already in use")
	ErrInvalidName  = errors.New("invalid name")
	ErrShuttingDown = errors.New("server is shutting down")
)
