package domain

import (
	"github.com/shopspring/decimal"

	"github.com/AztecProtocol/gregoswap-sub001/pkg/mathutil"
)

// SwapPhase represents the lifecycle phase of a swap submission.
type SwapPhase struct {
	Code   int
	Failed bool
}

const (
	swapFieldNone = iota
	swapFieldFrom
	swapFieldTo
)

// Swap holds the two linked decimal-string amounts and the exchange rate
// keeping them mutually consistent. Whenever the rate and the last edited
// field are known, the other field is derived from them: the two fields are
// never independently dirty relative to the current rate. While the rate is
// unavailable the derived field stays empty so the UI renders a placeholder
// instead of a stale value.
type Swap struct {
	FromAmount   string
	ToAmount     string
	ExchangeRate decimal.Decimal
	HasRate      bool
	Phase        SwapPhase
	Error        string

	lastEdited int
}

// NewSwap returns an idle swap with no amounts and no rate.
func NewSwap() *Swap {
	return &Swap{Phase: SwapPhase{Code: SwapPhaseCodeIdle}}
}

// SetFromAmount records the input amount and derives the output amount from
// the current rate. An empty string clears both fields.
func (s *Swap) SetFromAmount(amount string) error {
	if amount == "" {
		s.FromAmount, s.ToAmount, s.lastEdited = "", "", swapFieldNone
		return nil
	}
	if _, err := mathutil.ParseAmount(amount); err != nil {
		return err
	}
	s.FromAmount = amount
	s.lastEdited = swapFieldFrom
	s.derive()
	return nil
}

// SetToAmount records the output amount and derives the input amount from
// the current rate. An empty string clears both fields.
func (s *Swap) SetToAmount(amount string) error {
	if amount == "" {
		s.FromAmount, s.ToAmount, s.lastEdited = "", "", swapFieldNone
		return nil
	}
	if _, err := mathutil.ParseAmount(amount); err != nil {
		return err
	}
	s.ToAmount = amount
	s.lastEdited = swapFieldTo
	s.derive()
	return nil
}

// SetRate stores a fresh exchange rate and re-derives the dependent field.
// A non-positive rate is treated as unavailable.
func (s *Swap) SetRate(rate decimal.Decimal) {
	if rate.LessThanOrEqual(decimal.Zero) {
		s.ClearRate()
		return
	}
	s.ExchangeRate = rate
	s.HasRate = true
	s.derive()
}

// ClearRate marks the rate as unavailable and blanks the derived field.
func (s *Swap) ClearRate() {
	s.ExchangeRate = decimal.Zero
	s.HasRate = false
	s.derive()
}

func (s *Swap) derive() {
	switch s.lastEdited {
	case swapFieldFrom:
		if !s.HasRate {
			s.ToAmount = ""
			return
		}
		if to, err := mathutil.MulRate(s.FromAmount, s.ExchangeRate); err == nil {
			s.ToAmount = to
		}
	case swapFieldTo:
		if !s.HasRate {
			s.FromAmount = ""
			return
		}
		if from, err := mathutil.DivRate(s.ToAmount, s.ExchangeRate); err == nil {
			s.FromAmount = from
		}
	}
}

// Sending brings an idle swap with a valid positive input amount to the
// sending phase.
func (s *Swap) Sending() (bool, error) {
	if s.Phase.Code == SwapPhaseCodeSending && !s.Phase.Failed {
		return true, nil
	}
	if s.Phase.Failed || s.Phase.Code != SwapPhaseCodeIdle {
		return false, ErrSwapMustBeIdle
	}
	if _, err := mathutil.ParseAmount(s.FromAmount); err != nil {
		return false, ErrSwapMissingAmount
	}
	s.Phase.Code = SwapPhaseCodeSending
	return true, nil
}

// Mining marks the submitted transaction as being mined.
func (s *Swap) Mining() (bool, error) {
	if s.Phase.Code >= SwapPhaseCodeMining && !s.Phase.Failed {
		return true, nil
	}
	if s.Phase.Failed || s.Phase.Code != SwapPhaseCodeSending {
		return false, ErrSwapMustBeSending
	}
	s.Phase.Code = SwapPhaseCodeMining
	return true, nil
}

// Settle marks the swap as successfully mined.
func (s *Swap) Settle() (bool, error) {
	if s.Phase.Code == SwapPhaseCodeSuccess {
		return true, nil
	}
	if s.Phase.Failed || s.Phase.Code != SwapPhaseCodeMining &&
		s.Phase.Code != SwapPhaseCodeSending {
		return false, ErrSwapMustBeMining
	}
	s.Phase.Code = SwapPhaseCodeSuccess
	return true, nil
}

// Fail records a classified failure message. The entered amounts are
// preserved so the user can retry after dismissing the error.
func (s *Swap) Fail(msg string) {
	s.Phase.Failed = true
	s.Error = msg
}

// Dismiss acknowledges a failure and returns to idle, keeping amounts.
func (s *Swap) Dismiss() {
	if !s.Phase.Failed {
		return
	}
	s.Phase = SwapPhase{Code: SwapPhaseCodeIdle}
	s.Error = ""
}

// Reset returns a settled swap to idle, clearing the amounts.
func (s *Swap) Reset() {
	s.Phase = SwapPhase{Code: SwapPhaseCodeIdle}
	s.Error = ""
	s.FromAmount = ""
	s.ToAmount = ""
	s.lastEdited = swapFieldNone
}

// InFlight returns whether a submitted transaction is not yet settled.
func (s *Swap) InFlight() bool {
	return !s.Phase.Failed &&
		(s.Phase.Code == SwapPhaseCodeSending || s.Phase.Code == SwapPhaseCodeMining)
}
