// =============================
// File: internal/launchpad/errors.go
// =============================
package launchpad

import (
	"errors"
	"fmt"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/registry"
)

// Kind classifies every failure the engine returns.
type Kind string

const (
	KindUnauthorized          Kind = "Unauthorized"
	KindInvalidConfig         Kind = "InvalidConfig"
	KindPairNotFound          Kind = "PairNotFound"
	KindAmountZero            Kind = "AmountZero"
	KindInsufficientLiquidity Kind = "InsufficientLiquidity"
	KindSlippageExceeded      Kind = "SlippageExceeded"
	KindCurveClosed           Kind = "CurveClosed"
	KindOrderNotFound         Kind = "OrderNotFound"
	KindNotOwner              Kind = "NotOwner"
	KindAlreadyFilled         Kind = "AlreadyFilled"
	KindThresholdNotMet       Kind = "ThresholdNotMet"
	KindAlreadyGraduated      Kind = "AlreadyGraduated"

	KindTradingDisabled   Kind = "TradingDisabled"
	KindTokenExists       Kind = "TokenExists"
	KindOrderLimit        Kind = "OrderLimit"
	KindInsufficientFunds Kind = "InsufficientFunds"
	KindMigrationFailed   Kind = "MigrationFailed"
	KindFactoryFailed     Kind = "FactoryFailed"
	KindInvalidMessage    Kind = "InvalidMessage"
)

// Error is the typed error returned by Execute and Query.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrCurveClosed)
// works whatever the detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrUnauthorized          = &Error{Kind: KindUnauthorized}
	ErrInvalidConfig         = &Error{Kind: KindInvalidConfig}
	ErrPairNotFound          = &Error{Kind: KindPairNotFound}
	ErrAmountZero            = &Error{Kind: KindAmountZero}
	ErrInsufficientLiquidity = &Error{Kind: KindInsufficientLiquidity}
	ErrSlippageExceeded      = &Error{Kind: KindSlippageExceeded}
	ErrCurveClosed           = &Error{Kind: KindCurveClosed}
	ErrOrderNotFound         = &Error{Kind: KindOrderNotFound}
	ErrNotOwner              = &Error{Kind: KindNotOwner}
	ErrAlreadyFilled         = &Error{Kind: KindAlreadyFilled}
	ErrThresholdNotMet       = &Error{Kind: KindThresholdNotMet}
	ErrAlreadyGraduated      = &Error{Kind: KindAlreadyGraduated}
	ErrTradingDisabled       = &Error{Kind: KindTradingDisabled}
	ErrTokenExists           = &Error{Kind: KindTokenExists}
	ErrOrderLimit            = &Error{Kind: KindOrderLimit}
	ErrInsufficientFunds     = &Error{Kind: KindInsufficientFunds}
	ErrMigrationFailed       = &Error{Kind: KindMigrationFailed}
	ErrFactoryFailed         = &Error{Kind: KindFactoryFailed}
	ErrInvalidMessage        = &Error{Kind: KindInvalidMessage}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind of an engine error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// classify maps errors from the dex packages to engine kinds.
func classify(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, curve.ErrCurveClosed):
		return wrapError(KindCurveClosed, err, "swap rejected")
	case errors.Is(err, curve.ErrZeroAmount):
		return wrapError(KindAmountZero, err, "amount")
	case errors.Is(err, curve.ErrInsufficientLiquidity):
		return wrapError(KindInsufficientLiquidity, err, "curve")
	case errors.Is(err, curve.ErrPriceImpact):
		return wrapError(KindSlippageExceeded, err, "price impact")
	case errors.Is(err, curve.ErrAlreadyGraduated):
		return wrapError(KindAlreadyGraduated, err, "graduate")
	case errors.Is(err, curve.ErrThresholdNotMet):
		return wrapError(KindThresholdNotMet, err, "graduate")
	case errors.Is(err, registry.ErrTokenExists):
		return wrapError(KindTokenExists, err, "create_token")
	case errors.Is(err, registry.ErrTokenNotFound), errors.Is(err, registry.ErrPairNotFound):
		return wrapError(KindPairNotFound, err, "lookup")
	default:
		return wrapError(KindInvalidMessage, err, "unclassified")
	}
}
