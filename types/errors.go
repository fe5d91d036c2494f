package types

import (
	"errors"
	"fmt"
)

// 错误分类，调用方通过 errors.Is 判断
var (
	ErrPhase                = errors.New("operation not allowed in current phase")
	ErrDuplicateCommitment  = errors.New("participant already committed in this round")
	ErrNoCommitment         = errors.New("no commitment from participant in this round")
	ErrHashMismatch         = errors.New("revealed bid does not match commitment")
	ErrAlreadyRevealed      = errors.New("participant already revealed in this round")
	ErrInvalidConfiguration = errors.New("invalid auction configuration")

	ErrAlreadySettled    = errors.New("round already settled")
	ErrInvalidCommitment = errors.New("commitment hash is empty")
	ErrInvalidEscrow     = errors.New("escrow must be positive")
)

// RoundError 携带失败时的轮次和阶段，方便调用方决定是否等待下一轮
type RoundError struct {
	Kind   error
	Round  RoundID
	Phase  Phase
	Detail string
}

func NewRoundError(kind error, round RoundID, phase Phase, detail string) *RoundError {
	return &RoundError{Kind: kind, Round: round, Phase: phase, Detail: detail}
}

func (e *RoundError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%v (round=%v phase=%v)", e.Kind, e.Round, e.Phase)
	}
	return fmt.Sprintf("%v: %s (round=%v phase=%v)", e.Kind, e.Detail, e.Round, e.Phase)
}

func (e *RoundError) Unwrap() error {
	return e.Kind
}

// InvalidConfiguration 包装 ErrInvalidConfiguration
func InvalidConfiguration(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

var kinds = []error{
	ErrPhase, ErrDuplicateCommitment, ErrNoCommitment, ErrHashMismatch, ErrAlreadyRevealed,
	ErrInvalidConfiguration, ErrAlreadySettled, ErrInvalidCommitment, ErrInvalidEscrow,
}

// KindOf 返回err所属的错误分类，不属于任何分类（如存储I/O错误）时返回nil
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
