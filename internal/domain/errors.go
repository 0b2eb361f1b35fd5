package domain

import "errors"

var (
	ErrUnknownLabel    = errors.New("unknown classifier label")
	ErrInvalidScore    = errors.New("classifier score outside [0, 1]")
	ErrEmptyPrediction = errors.New("classifier returned no prediction")
	ErrSourceFailed    = errors.New("text source failed")
)
