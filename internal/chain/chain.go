package chain

import (
	"fmt"
	"strings"
)

// ID identifies one of the supported blockchains.
type ID uint8

const (
	Ethereum ID = iota
	BSC
	Bitcoin
	Solana
	Cardano
	Litecoin

	count
)

// Count is the number of supported chains.
const Count = int(count)

type info struct {
	name     string
	label    string
	symbol   string
	decimals uint8
}

var table = [count]info{
	Ethereum: {name: "ethereum", label: "Ethereum", symbol: "ETH", decimals: 18},
	BSC:      {name: "bsc", label: "BNB Smart Chain", symbol: "BNB", decimals: 18},
	Bitcoin:  {name: "bitcoin", label: "Bitcoin", symbol: "BTC", decimals: 8},
	Solana:   {name: "solana", label: "Solana", symbol: "SOL", decimals: 9},
	Cardano:  {name: "cardano", label: "Cardano", symbol: "ADA", decimals: 6},
	Litecoin: {name: "litecoin", label: "Litecoin", symbol: "LTC", decimals: 8},
}

// All returns every supported chain in declaration order.
func All() []ID {
	out := make([]ID, 0, Count)
	for i := ID(0); i < count; i++ {
		out = append(out, i)
	}
	return out
}

func (c ID) Valid() bool { return c < count }

func (c ID) String() string {
	if !c.Valid() {
		return fmt.Sprintf("chain(%d)", uint8(c))
	}
	return table[c].name
}

func (c ID) Label() string {
	if !c.Valid() {
		return c.String()
	}
	return table[c].label
}

func (c ID) Symbol() string {
	if !c.Valid() {
		return ""
	}
	return table[c].symbol
}

// Decimals is the number of base units per native coin, as a power of ten.
func (c ID) Decimals() uint8 {
	if !c.Valid() {
		return 0
	}
	return table[c].decimals
}

// Parse accepts the canonical name ("bitcoin") or the ticker ("btc"), case-insensitive.
func Parse(s string) (ID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, inf := range table {
		if s == inf.name || s == strings.ToLower(inf.symbol) {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown chain %q", s)
}

// ParseList parses a comma or space separated list, dropping duplicates.
func ParseList(s string) ([]ID, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' })
	seen := make(map[ID]struct{}, len(fields))
	out := make([]ID, 0, len(fields))
	for _, f := range fields {
		id, err := Parse(f)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func (c ID) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid chain %d", uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *ID) UnmarshalText(b []byte) error {
	id, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = id
	return nil
}
