package oracle

import (
	"math/big"
	"strings"

	"SeedSleuth/internal/chain"
)

// Amount is a native balance in the chain's smallest unit (wei, satoshi,
// lamport, lovelace). The zero value is a zero balance.
type Amount struct {
	Units    *big.Int
	Decimals uint8
}

func NewAmount(c chain.ID, units *big.Int) Amount {
	if units == nil {
		units = new(big.Int)
	}
	return Amount{Units: new(big.Int).Set(units), Decimals: c.Decimals()}
}

func Zero(c chain.ID) Amount { return NewAmount(c, nil) }

func (a Amount) Sign() int {
	if a.Units == nil {
		return 0
	}
	return a.Units.Sign()
}

func (a Amount) IsPositive() bool { return a.Sign() > 0 }

// String renders the amount in whole coins without rounding, trimming
// trailing zeros: 1500000000000000000 wei -> "1.5".
func (a Amount) String() string {
	if a.Units == nil {
		return "0"
	}
	neg := a.Units.Sign() < 0
	digits := new(big.Int).Abs(a.Units).String()
	d := int(a.Decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}
	whole, frac := digits[:len(digits)-d], strings.TrimRight(digits[len(digits)-d:], "0")
	out := whole
	if frac != "" {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}
