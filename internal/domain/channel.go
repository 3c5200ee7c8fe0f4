package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Channel is a payment rail money can be collected through.
type Channel string

const (
	ChannelCash         Channel = "CASH"
	ChannelCardTerminal Channel = "CARD_TERMINAL"
	ChannelBankTransfer Channel = "BANK_TRANSFER"
	ChannelMobileMoney  Channel = "MOBILE_MONEY"
)

// allChannels is the closed set in canonical order.
var allChannels = [...]Channel{
	ChannelCash,
	ChannelCardTerminal,
	ChannelBankTransfer,
	ChannelMobileMoney,
}

// AllChannels returns every channel in canonical order.
func AllChannels() []Channel {
	out := make([]Channel, len(allChannels))
	copy(out, allChannels[:])
	return out
}

// IsValid reports whether c belongs to the closed channel set.
func (c Channel) IsValid() bool {
	for _, known := range allChannels {
		if c == known {
			return true
		}
	}
	return false
}

// ParseChannel parses a channel name, case-insensitively.
func ParseChannel(s string) (Channel, error) {
	c := Channel(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: unknown channel %q", ErrValidation, s)
	}
	return c, nil
}

// Money is an amount in minor currency units (cents).
type Money int64

// MinorUnitExponent is the number of decimal places between major and minor units.
const MinorUnitExponent = 2

// Decimal returns the amount in major units. Display only.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -MinorUnitExponent)
}

// String formats the amount in major units, e.g. "100.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(MinorUnitExponent)
}

// ParseMoney parses a major-unit decimal string into minor units.
// Amounts with more precision than one minor unit are rejected rather than rounded.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid amount %q", ErrValidation, s)
	}

	minor := d.Shift(MinorUnitExponent)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("%w: amount %q has sub-cent precision", ErrValidation, s)
	}

	if !minor.BigInt().IsInt64() || !AmountInRange(Money(minor.IntPart())) {
		return 0, fmt.Errorf("%w: amount %q is out of range", ErrValidation, s)
	}

	return Money(minor.IntPart()), nil
}

// Amounts maps each channel to an amount.
type Amounts map[Channel]Money

// ZeroAmounts returns a map holding a zero entry for every channel.
func ZeroAmounts() Amounts {
	a := make(Amounts, len(allChannels))
	for _, c := range allChannels {
		a[c] = 0
	}
	return a
}

// Total sums all channel amounts.
func (a Amounts) Total() Money {
	var total Money
	for _, v := range a {
		total += v
	}
	return total
}

// Clone returns a copy of a.
func (a Amounts) Clone() Amounts {
	if a == nil {
		return nil
	}
	out := make(Amounts, len(a))
	for c, v := range a {
		out[c] = v
	}
	return out
}

// Equal reports whether both maps hold exactly the same entries.
func (a Amounts) Equal(b Amounts) bool {
	if len(a) != len(b) {
		return false
	}
	for c, v := range a {
		w, ok := b[c]
		if !ok || v != w {
			return false
		}
	}
	return true
}
