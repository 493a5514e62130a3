package protocol

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Decimal is a fixed point number carried as its textual digits plus the
// count of fractional digits. Digits are kept verbatim: no sign, no
// normalization of leading or trailing zeros.
type Decimal struct {
	digits    string
	precision int
}

// ParseDecimal parses text of the form "123", "123.45", "12." or ".5".
// A bare "." is zero digits with precision 0.
func ParseDecimal(text string) (Decimal, error) {
	parts := strings.Split(text, ".")
	for _, p := range parts {
		if !isDigits(p) {
			return Decimal{}, fmt.Errorf("%w: %q is not a digit string", ErrMalformedDecimal, text)
		}
	}
	switch len(parts) {
	case 1:
		return NewDecimal(parts[0], 0)
	case 2:
		return NewDecimal(parts[0]+parts[1], len(parts[1]))
	default:
		return Decimal{}, fmt.Errorf("%w: %q has more than one point", ErrMalformedDecimal, text)
	}
}

// NewDecimal builds a Decimal from a digit string and its fractional digit
// count. The digit string may be empty.
func NewDecimal(digits string, precision int) (Decimal, error) {
	if !isDigits(digits) {
		return Decimal{}, fmt.Errorf("%w: %q is not a digit string", ErrMalformedDecimal, digits)
	}
	if precision < 0 || precision > len(digits) {
		return Decimal{}, fmt.Errorf("%w: precision %d out of range for %d digits", ErrMalformedDecimal, precision, len(digits))
	}
	if precision > math.MaxUint8 {
		return Decimal{}, fmt.Errorf("%w: precision %d does not fit one byte", ErrMalformedDecimal, precision)
	}
	return Decimal{digits: digits, precision: precision}, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Digits returns the digit string without a decimal point.
func (d Decimal) Digits() string { return d.digits }

// Precision returns the number of fractional digits.
func (d Decimal) Precision() int { return d.precision }

func (d Decimal) Tag() Tag { return TagDecimal }

func (d Decimal) Len() int { return 2 + len(d.digits) }

// Encode writes the digit count mod 10 as one ASCII digit, the precision as a
// raw byte, then the digits. Digit strings of 10 or more share a count digit
// with shorter ones; that ambiguity is part of the wire format.
func (d Decimal) Encode() ([]byte, error) {
	return d.appendTo(make([]byte, 0, d.Len()))
}

func (d Decimal) appendTo(dst []byte) ([]byte, error) {
	dst = append(dst, '0'+byte(len(d.digits)%10), byte(d.precision))
	return append(dst, d.digits...), nil
}

// String renders the number with its decimal point restored.
func (d Decimal) String() string {
	if d.digits == "" {
		return "."
	}
	if d.precision == 0 {
		return d.digits
	}
	k := len(d.digits) - d.precision
	return d.digits[:k] + "." + d.digits[k:]
}

// Value converts to an arbitrary precision decimal for arithmetic or display.
func (d Decimal) Value() decimal.Decimal {
	if d.digits == "" {
		return decimal.Zero
	}
	coef, ok := new(big.Int).SetString(d.digits, 10)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(coef, -int32(d.precision))
}
