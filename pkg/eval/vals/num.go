// Package vals implements the value model of the interpreter.
//
// Values are Go strings. A value's numeric interpretation is derived on
// demand, never stored: arithmetic parses its operands as REXX decimal
// numbers, rounds them to the active precision, computes, and rounds the
// result again. The Context type carries the precision (DIGITS) and the
// comparison tolerance (FUZZ) of the frame performing the operation.
package vals

import (
	"math/big"
	"strings"
)

// Num is a decimal number, Coef × 10**Exp, with the sign kept apart so the
// coefficient is never negative.
type Num struct {
	Neg  bool
	Coef *big.Int
	Exp  int
}

// Exponents beyond this bound make a string non-numeric rather than
// producing huge coefficients.
const maxExp = 999999

// ParseNum parses s as a REXX number: optional blanks, an optional sign
// (blanks may follow it), a decimal coefficient with an optional point,
// and an optional exponent. The second return value reports success.
func ParseNum(s string) (Num, bool) {
	s = strings.Trim(s, " \t")
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
	}
	var digits strings.Builder
	seen := false
	for i < len(s) && isDigit(s[i]) {
		digits.WriteByte(s[i])
		seen = true
		i++
	}
	exp := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			digits.WriteByte(s[i])
			seen = true
			exp--
			i++
		}
	}
	if !seen {
		return Num{}, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		eneg := false
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			eneg = s[i] == '-'
			i++
		}
		e := 0
		eseen := false
		for i < len(s) && isDigit(s[i]) {
			e = e*10 + int(s[i]-'0')
			if e > maxExp {
				return Num{}, false
			}
			eseen = true
			i++
		}
		if !eseen {
			return Num{}, false
		}
		if eneg {
			e = -e
		}
		exp += e
	}
	if i != len(s) {
		return Num{}, false
	}
	coef, ok := new(big.Int).SetString(digits.String(), 10)
	if !ok {
		return Num{}, false
	}
	if coef.Sign() == 0 {
		neg = false
	}
	return Num{neg, coef, exp}, true
}

// IsNum reports whether s parses as a REXX number.
func IsNum(s string) bool {
	_, ok := ParseNum(s)
	return ok
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

var (
	bigOne = big.NewInt(1)
	bigTen = big.NewInt(10)
)

func pow10(n int) *big.Int {
	return new(big.Int).Exp(bigTen, big.NewInt(int64(n)), nil)
}

func digitCount(x *big.Int) int {
	if x.Sign() == 0 {
		return 1
	}
	return len(x.Text(10))
}

// roundTo rounds n to at most digits significant digits, half up.
func roundTo(n Num, digits int) Num {
	drop := digitCount(n.Coef) - digits
	if drop <= 0 || n.Coef.Sign() == 0 {
		return n
	}
	q, r := new(big.Int).QuoRem(n.Coef, pow10(drop), new(big.Int))
	half := new(big.Int).Mul(pow10(drop-1), big.NewInt(5))
	if r.Cmp(half) >= 0 {
		q.Add(q, bigOne)
	}
	res := Num{n.Neg, q, n.Exp + drop}
	// Rounding 999... up grows the coefficient by one digit.
	if digitCount(res.Coef) > digits {
		res.Coef = new(big.Int).Quo(res.Coef, bigTen)
		res.Exp++
	}
	if res.Coef.Sign() == 0 {
		res.Neg = false
	}
	return res
}

// stripZeros removes trailing zeros from the coefficient while the
// exponent is negative. Division results pass through it so that 1.0/0.5
// reads 2, not 2.0.
func stripZeros(n Num) Num {
	if n.Coef.Sign() == 0 {
		return Num{false, big.NewInt(0), 0}
	}
	coef := new(big.Int).Set(n.Coef)
	q, r := new(big.Int), new(big.Int)
	for n.Exp < 0 {
		q.QuoRem(coef, bigTen, r)
		if r.Sign() != 0 {
			break
		}
		coef, q = q, coef
		n.Exp++
	}
	return Num{n.Neg, coef, n.Exp}
}

// Format renders n the classic REXX way: plain notation when the adjusted
// exponent lies in [-6, digits), exponential otherwise.
func Format(n Num, digits int) string {
	coef := n.Coef.Text(10)
	adjusted := n.Exp + len(coef) - 1
	var sb strings.Builder
	if n.Neg && n.Coef.Sign() != 0 {
		sb.WriteByte('-')
	}
	if adjusted >= -6 && adjusted < digits {
		switch {
		case n.Exp >= 0:
			sb.WriteString(coef)
			sb.WriteString(strings.Repeat("0", n.Exp))
		case len(coef)+n.Exp > 0:
			sb.WriteString(coef[:len(coef)+n.Exp])
			sb.WriteByte('.')
			sb.WriteString(coef[len(coef)+n.Exp:])
		default:
			sb.WriteString("0.")
			sb.WriteString(strings.Repeat("0", -(len(coef) + n.Exp)))
			sb.WriteString(coef)
		}
		return sb.String()
	}
	sb.WriteString(coef[:1])
	if len(coef) > 1 {
		sb.WriteByte('.')
		sb.WriteString(coef[1:])
	}
	sb.WriteByte('E')
	if adjusted >= 0 {
		sb.WriteByte('+')
	}
	sb.WriteString(big.NewInt(int64(adjusted)).Text(10))
	return sb.String()
}
