// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Domain rejections. Match with errors.Is; wrapping preserves the identity.
var (
	ErrInvalidRange       = New("invalid range: low exceeds high")
	ErrUnknownTransaction = New("unknown transaction")
	ErrValidatorNotActive = New("validator not active")
	ErrInsufficientStake  = New("insufficient stake")
	ErrArithmeticOverflow = New("arithmetic overflow")
	ErrInvariantViolation = New("invariant violation")
	ErrInvalidRatio       = New("invalid slash ratio")
	ErrWrongTxKind        = New("transaction kind mismatch")
	ErrZeroAmount         = New("amount must be positive")
)

// ErrRevert is a rejection caused by the request itself rather than by a
// storage fault. Nothing is written when one is returned.
type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
