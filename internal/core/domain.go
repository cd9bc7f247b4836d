package core

import (
	"errors"
)

// Timing is a fractional position within a simulated year at which a
// transaction occurs: 0 is the start of the year, 1 is the end.
type Timing float64

const (
	TimingStart   Timing = 0
	TimingMidYear Timing = 0.5
	TimingEnd     Timing = 1
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidTiming     = errors.New("timing must be between 0 and 1")
	ErrUnsupportedSource = errors.New("unsupported priority tree source type")
	ErrUnknownChild      = errors.New("node is not a child of this parent")
)

func (t Timing) Validate() error {
	if t < 0 || t > 1 {
		return ErrInvalidTiming
	}
	return nil
}
