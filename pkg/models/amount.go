package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency is assumed whenever the source of an amount carries no
// currency of its own (the local store and the banking API are EUR-only).
const DefaultCurrency = "EUR"

// Amount represents a monetary amount
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// NewAmount builds an Amount in the default currency.
func NewAmount(value string) Amount {
	return Amount{Value: value, Currency: DefaultCurrency}
}

// ToMoney converts the decimal string representation into minor units.
func (a *Amount) ToMoney() *money.Money {
	currencyCode := a.Currency
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	value := a.Value
	if value == "" {
		value = "0"
	}

	negative := strings.HasPrefix(value, "-")
	value = strings.TrimPrefix(value, "-")

	split := strings.Split(value, ".")
	currency := money.GetCurrency(currencyCode)
	if len(split) == 1 {
		split = append(split, strings.Repeat("0", currency.Fraction))
	} else if len(split) == 2 && len(split[1]) < currency.Fraction {
		for i := len(split[1]); i < currency.Fraction; i++ {
			split[1] += "0"
		}
	} else if len(split) == 2 && len(split[1]) >= currency.Fraction {
		split[1] = split[1][:currency.Fraction]
	}
	intTranslation, err := strconv.ParseInt(strings.Join(split, ""), 10, 64)
	if err != nil {
		panic(fmt.Sprintf("failed to parse amount: original split %v: %v", split, err))
	}
	if negative {
		intTranslation = -intTranslation
	}
	return money.New(intTranslation, currencyCode)
}

// Abs returns the amount with any sign stripped. Remote debit feeds report
// deductions as negative numbers; internally amounts are always unsigned.
func (a Amount) Abs() Amount {
	return Amount{
		Value:    strings.TrimPrefix(a.Value, "-"),
		Currency: a.Currency,
	}
}

// plainDecimal is the only syntax ToMoney accepts: digits with an optional
// fractional part and an optional leading minus. Exponents, Inf, and NaN
// parse as floats but have no minor-unit representation.
var plainDecimal = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseSignedAmount validates a user-entered amount string. It must be a
// plain decimal number; a leading minus is allowed.
func ParseSignedAmount(s string) (Amount, error) {
	trimmed := strings.TrimSpace(s)
	if !plainDecimal.MatchString(trimmed) {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return NewAmount(trimmed), nil
}

// ParsePositiveAmount validates a user-entered amount string. It must be a
// plain decimal number strictly greater than zero.
func ParsePositiveAmount(s string) (Amount, error) {
	amount, err := ParseSignedAmount(s)
	if err != nil {
		return Amount{}, err
	}
	f, err := strconv.ParseFloat(amount.Value, 64)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	if f <= 0 {
		return Amount{}, fmt.Errorf("amount must be positive, got %q", s)
	}
	return amount, nil
}
