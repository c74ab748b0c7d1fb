package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
)

// Amount is an immutable unbounded integer (wei precision) encoded as a decimal string.
// The zero value is 0.
type Amount struct {
	v *big.Int
}

// NewAmount copies value into an Amount.
func NewAmount(value *big.Int) Amount {
	if value == nil {
		return Amount{}
	}
	return Amount{v: new(big.Int).Set(value)}
}

// AmountFromUint64 builds an Amount from a uint64.
func AmountFromUint64(value uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(value)}
}

// ParseAmount parses a base-10 or 0x-prefixed integer.
func ParseAmount(input string) (Amount, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Amount{}, fmt.Errorf("empty amount")
	}
	sign, digits, base := numberBase(input)
	if digits == "" || digits[0] == '-' || digits[0] == '+' {
		return Amount{}, fmt.Errorf("invalid amount: %s", input)
	}
	value, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount: %s", input)
	}
	if sign {
		value.Neg(value)
	}
	return Amount{v: value}, nil
}

// numberBase splits an optional sign and 0x prefix off input. Anything
// without the prefix is decimal, leading zeros included.
func numberBase(input string) (neg bool, digits string, base int) {
	digits = input
	if strings.HasPrefix(digits, "-") {
		neg, digits = true, digits[1:]
	} else if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		return neg, digits[2:], 16
	}
	return neg, digits, 10
}

// MustAmount parses input and panics on error. Intended for constants and tests.
func MustAmount(input string) Amount {
	a, err := ParseAmount(input)
	if err != nil {
		panic(err)
	}
	return a
}

// Int returns a copy of the underlying value.
func (a Amount) Int() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.v)
}

func (a Amount) Add(b Amount) Amount {
	return Amount{v: new(big.Int).Add(a.Int(), b.Int())}
}

func (a Amount) Sub(b Amount) Amount {
	return Amount{v: new(big.Int).Sub(a.Int(), b.Int())}
}

func (a Amount) Mul(b Amount) Amount {
	return Amount{v: new(big.Int).Mul(a.Int(), b.Int())}
}

func (a Amount) Neg() Amount {
	return Amount{v: new(big.Int).Neg(a.Int())}
}

func (a Amount) Cmp(b Amount) int {
	return a.Int().Cmp(b.Int())
}

func (a Amount) Sign() int {
	if a.v == nil {
		return 0
	}
	return a.v.Sign()
}

func (a Amount) IsZero() bool {
	return a.Sign() == 0
}

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func (a Amount) String() string {
	if a.v == nil {
		return "0"
	}
	return a.v.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts both quoted strings and bare JSON numbers.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = Amount{}
		return nil
	}
	var text string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	} else {
		text = string(data)
	}
	parsed, err := ParseAmount(text)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
