package vals

import (
	"fmt"
	"math/big"
)

// Numeric settings of a fresh frame.
const (
	DefaultDigits = 9
	DefaultFuzz   = 0
)

// Context carries the numeric settings an operation runs under.
type Context struct {
	Digits int
	Fuzz   int
}

// NotANumber is returned when an operand cannot be parsed as a number.
type NotANumber struct{ Value string }

func (e NotANumber) Error() string {
	return fmt.Sprintf("%q is not a number", e.Value)
}

// NotWhole is returned where a whole number is required.
type NotWhole struct{ Value string }

func (e NotWhole) Error() string {
	return fmt.Sprintf("%q is not a whole number", e.Value)
}

// NotLogical is returned when a logical operand is not 0 or 1.
type NotLogical struct{ Value string }

func (e NotLogical) Error() string {
	return fmt.Sprintf("%q is not 0 or 1", e.Value)
}

// DivisionByZero is returned by the division operators.
type DivisionByZero struct{}

func (DivisionByZero) Error() string { return "division by zero" }

// Overflow is returned when a result cannot be represented under the
// current NUMERIC DIGITS.
type Overflow struct{ Op string }

func (e Overflow) Error() string {
	return fmt.Sprintf("result of %s does not fit under NUMERIC DIGITS", e.Op)
}

func (c Context) operand(s string) (Num, error) {
	n, ok := ParseNum(s)
	if !ok {
		return Num{}, NotANumber{s}
	}
	return roundTo(n, c.Digits), nil
}

func (c Context) operands(a, b string) (Num, Num, error) {
	x, err := c.operand(a)
	if err != nil {
		return Num{}, Num{}, err
	}
	y, err := c.operand(b)
	if err != nil {
		return Num{}, Num{}, err
	}
	return x, y, nil
}

func signed(n Num) *big.Int {
	x := new(big.Int).Set(n.Coef)
	if n.Neg {
		x.Neg(x)
	}
	return x
}

func fromSigned(x *big.Int, exp int) Num {
	neg := x.Sign() < 0
	return Num{neg, new(big.Int).Abs(x), exp}
}

// align expresses both operands at their smaller exponent and returns the
// signed coefficients.
func align(a, b Num) (*big.Int, *big.Int, int) {
	exp := a.Exp
	if b.Exp < exp {
		exp = b.Exp
	}
	x := signed(a)
	y := signed(b)
	if a.Exp > exp {
		x.Mul(x, pow10(a.Exp-exp))
	}
	if b.Exp > exp {
		y.Mul(y, pow10(b.Exp-exp))
	}
	return x, y, exp
}

func addNum(a, b Num) Num {
	x, y, exp := align(a, b)
	return fromSigned(x.Add(x, y), exp)
}

func negNum(a Num) Num {
	if a.Coef.Sign() == 0 {
		return a
	}
	return Num{!a.Neg, a.Coef, a.Exp}
}

func mulNum(a, b Num) Num {
	coef := new(big.Int).Mul(a.Coef, b.Coef)
	neg := a.Neg != b.Neg && coef.Sign() != 0
	return Num{neg, coef, a.Exp + b.Exp}
}

// divNum computes a/b to digits+1 or more significant digits, leaving the
// final rounding to the caller. b must be nonzero.
func divNum(a, b Num, digits int) Num {
	if a.Coef.Sign() == 0 {
		return Num{false, big.NewInt(0), 0}
	}
	shift := digits + digitCount(b.Coef) - digitCount(a.Coef) + 1
	num := new(big.Int).Set(a.Coef)
	den := new(big.Int).Set(b.Coef)
	if shift >= 0 {
		num.Mul(num, pow10(shift))
	} else {
		den.Mul(den, pow10(-shift))
	}
	q := new(big.Int).Quo(num, den)
	return Num{a.Neg != b.Neg, q, a.Exp - b.Exp - shift}
}

// Add returns a + b.
func (c Context) Add(a, b string) (string, error) {
	x, y, err := c.operands(a, b)
	if err != nil {
		return "", err
	}
	return Format(roundTo(addNum(x, y), c.Digits), c.Digits), nil
}

// Sub returns a - b.
func (c Context) Sub(a, b string) (string, error) {
	x, y, err := c.operands(a, b)
	if err != nil {
		return "", err
	}
	return Format(roundTo(addNum(x, negNum(y)), c.Digits), c.Digits), nil
}

// Mul returns a * b.
func (c Context) Mul(a, b string) (string, error) {
	x, y, err := c.operands(a, b)
	if err != nil {
		return "", err
	}
	return Format(roundTo(mulNum(x, y), c.Digits), c.Digits), nil
}

// Div returns a / b. Trailing zeros are removed from the result, as in
// classic REXX division.
func (c Context) Div(a, b string) (string, error) {
	x, y, err := c.operands(a, b)
	if err != nil {
		return "", err
	}
	if y.Coef.Sign() == 0 {
		return "", DivisionByZero{}
	}
	q := stripZeros(roundTo(divNum(x, y, c.Digits), c.Digits))
	return Format(q, c.Digits), nil
}

// IntDiv returns a % b, the integer part of the quotient, truncated toward
// zero.
func (c Context) IntDiv(a, b string) (string, error) {
	x, y, err := c.operands(a, b)
	if err != nil {
		return "", err
	}
	if y.Coef.Sign() == 0 {
		return "", DivisionByZero{}
	}
	xa, xb, _ := align(x, y)
	q := new(big.Int).Quo(xa, xb)
	if digitCount(new(big.Int).Abs(q)) > c.Digits {
		return "", Overflow{"%"}
	}
	return Format(fromSigned(q, 0), c.Digits), nil
}

// Rem returns a // b, the remainder of the integer division. Its sign
// follows the dividend.
func (c Context) Rem(a, b string) (string, error) {
	x, y, err := c.operands(a, b)
	if err != nil {
		return "", err
	}
	if y.Coef.Sign() == 0 {
		return "", DivisionByZero{}
	}
	xa, xb, exp := align(x, y)
	q := new(big.Int).Quo(xa, xb)
	r := new(big.Int).Sub(xa, q.Mul(q, xb))
	return Format(roundTo(fromSigned(r, exp), c.Digits), c.Digits), nil
}

// Pow returns a ** b. The exponent must be a whole number.
func (c Context) Pow(a, b string) (string, error) {
	x, err := c.operand(a)
	if err != nil {
		return "", err
	}
	e, err := c.Whole(b)
	if err != nil {
		return "", err
	}
	if e > 99999 || e < -99999 {
		return "", Overflow{"**"}
	}
	if x.Coef.Sign() == 0 && e < 0 {
		return "", DivisionByZero{}
	}
	// Binary exponentiation with intermediates kept at a few guard digits
	// beyond the context, as classic implementations do.
	work := c.Digits + 10
	result := Num{false, big.NewInt(1), 0}
	base := x
	n := e
	if n < 0 {
		n = -n
	}
	for n > 0 {
		if n&1 == 1 {
			result = roundTo(mulNum(result, base), work)
		}
		base = roundTo(mulNum(base, base), work)
		n >>= 1
	}
	if e < 0 {
		// A negative power divides into 1 and follows division's rules,
		// including the removal of trailing zeros.
		result = divNum(Num{false, big.NewInt(1), 0}, result, work)
		return Format(stripZeros(roundTo(result, c.Digits)), c.Digits), nil
	}
	return Format(roundTo(result, c.Digits), c.Digits), nil
}

// Neg returns -a.
func (c Context) Neg(a string) (string, error) {
	x, err := c.operand(a)
	if err != nil {
		return "", err
	}
	return Format(negNum(x), c.Digits), nil
}

// Pos returns +a, which reformats a under the context like any other
// arithmetic result.
func (c Context) Pos(a string) (string, error) {
	x, err := c.operand(a)
	if err != nil {
		return "", err
	}
	return Format(x, c.Digits), nil
}

// NumCompare compares a and b numerically, using FUZZ fewer digits than
// the context's DIGITS as classic comparison does. The int is -1, 0 or 1;
// the bool reports whether both operands were numbers.
func (c Context) NumCompare(a, b string) (int, bool) {
	na, ok := ParseNum(a)
	if !ok {
		return 0, false
	}
	nb, ok := ParseNum(b)
	if !ok {
		return 0, false
	}
	d := c.Digits - c.Fuzz
	if d < 1 {
		d = 1
	}
	diff := addNum(roundTo(na, d), negNum(roundTo(nb, d)))
	switch {
	case diff.Coef.Sign() == 0:
		return 0, true
	case diff.Neg:
		return -1, true
	default:
		return 1, true
	}
}

// Whole converts s to an int. It fails when s is not a number, has a
// fractional part, or does not fit in an int.
func (c Context) Whole(s string) (int, error) {
	n, ok := ParseNum(s)
	if !ok {
		return 0, NotANumber{s}
	}
	n = stripZeros(roundTo(n, c.Digits))
	if n.Exp < 0 {
		return 0, NotWhole{s}
	}
	if digitCount(n.Coef)+n.Exp > 18 {
		return 0, Overflow{"whole-number conversion"}
	}
	scaled := new(big.Int).Mul(n.Coef, pow10(n.Exp))
	v := scaled.Int64()
	if n.Neg {
		v = -v
	}
	return int(v), nil
}

// IsWhole reports whether s is a number with no fractional part under the
// context's DIGITS.
func (c Context) IsWhole(s string) bool {
	n, ok := ParseNum(s)
	if !ok {
		return false
	}
	return stripZeros(roundTo(n, c.Digits)).Exp >= 0
}

// Abs returns the absolute value of a, rounded to the context's DIGITS.
func (c Context) Abs(a string) (string, error) {
	x, err := c.operand(a)
	if err != nil {
		return "", err
	}
	x.Neg = false
	return Format(x, c.Digits), nil
}

// Sign returns -1, 0 or 1 by the sign of a.
func (c Context) Sign(a string) (string, error) {
	x, err := c.operand(a)
	if err != nil {
		return "", err
	}
	switch {
	case x.Coef.Sign() == 0:
		return "0", nil
	case x.Neg:
		return "-1", nil
	default:
		return "1", nil
	}
}

// Trunc cuts a to the given number of decimal places without rounding and
// renders exactly that many places. places must not be negative.
func (c Context) Trunc(a string, places int) (string, error) {
	x, err := c.operand(a)
	if err != nil {
		return "", err
	}
	if x.Exp < -places {
		x.Coef = new(big.Int).Quo(x.Coef, pow10(-places-x.Exp))
		x.Exp = -places
	} else if x.Exp > -places {
		x.Coef = new(big.Int).Mul(x.Coef, pow10(x.Exp+places))
		x.Exp = -places
	}
	ds := x.Coef.String()
	var sb []byte
	if x.Neg && x.Coef.Sign() != 0 {
		sb = append(sb, '-')
	}
	if places == 0 {
		return string(append(sb, ds...)), nil
	}
	if len(ds) <= places {
		sb = append(sb, '0', '.')
		for i := len(ds); i < places; i++ {
			sb = append(sb, '0')
		}
		return string(append(sb, ds...)), nil
	}
	sb = append(sb, ds[:len(ds)-places]...)
	sb = append(sb, '.')
	return string(append(sb, ds[len(ds)-places:]...)), nil
}

// Bool interprets s as a logical value, which must be exactly 1 or 0.
func Bool(s string) (bool, error) {
	switch s {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, NotLogical{s}
}

// FormatBool renders a logical value.
func FormatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
