package eval

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/rexlang/rex/pkg/eval/errs"
)

// String functions. Positions are 1-based and lengths count bytes, as
// classic string handling does.

func init() {
	addBuiltinFns(map[string]any{
		"LENGTH":    func(s string) string { return strconv.Itoa(len(s)) },
		"SUBSTR":    substr,
		"LEFT":      left,
		"RIGHT":     right,
		"POS":       pos,
		"LASTPOS":   lastPos,
		"COPIES":    copies,
		"REVERSE":   reverse,
		"STRIP":     strip,
		"SPACE":     space,
		"TRANSLATE": translate,
		"UPPER":     strings.ToUpper,
		"LOWER":     strings.ToLower,
		"WORD":      word,
		"WORDS":     func(s string) string { return strconv.Itoa(len(wordBounds(s))) },
		"SUBWORD":   subword,
		"WORDPOS":   wordPos,
		"CENTER":    center,
		"CENTRE":    center,
		"D2X":       d2x,
		"X2D":       x2d,
	})
	addBuiltinDocs(map[string]string{
		"LENGTH":    "LENGTH(string) - length of string",
		"SUBSTR":    "SUBSTR(string, n [, length [, pad]]) - substring from position n",
		"LEFT":      "LEFT(string, length [, pad]) - leftmost length characters",
		"RIGHT":     "RIGHT(string, length [, pad]) - rightmost length characters",
		"POS":       "POS(needle, haystack [, start]) - first position of needle, or 0",
		"LASTPOS":   "LASTPOS(needle, haystack [, start]) - last position of needle, or 0",
		"COPIES":    "COPIES(string, n) - string repeated n times",
		"REVERSE":   "REVERSE(string) - string reversed",
		"STRIP":     "STRIP(string [, option [, char]]) - remove leading/trailing chars",
		"SPACE":     "SPACE(string [, n [, pad]]) - words joined by n pads",
		"TRANSLATE": "TRANSLATE(string [, out [, in [, pad]]]) - translate characters",
		"UPPER":     "UPPER(string) - string upper-cased",
		"LOWER":     "LOWER(string) - string lower-cased",
		"WORD":      "WORD(string, n) - the nth blank-delimited word",
		"WORDS":     "WORDS(string) - number of blank-delimited words",
		"SUBWORD":   "SUBWORD(string, n [, length]) - words from the nth on",
		"WORDPOS":   "WORDPOS(phrase, string [, start]) - word number of phrase, or 0",
		"CENTER":    "CENTER(string, length [, pad]) - string centered in length",
		"CENTRE":    "CENTRE(string, length [, pad]) - string centered in length",
		"D2X":       "D2X(whole) - decimal to hexadecimal",
		"X2D":       "X2D(hex) - hexadecimal to decimal",
	})
}

func padChar(pad *string, what string) (byte, error) {
	if pad == nil {
		return ' ', nil
	}
	if len(*pad) != 1 {
		return 0, errs.BadValue{What: what, Valid: "a single character", Actual: *pad}
	}
	return (*pad)[0], nil
}

func substr(s string, n int, length *int, pad *string) (string, error) {
	if n < 1 {
		return "", errs.BadValue{
			What: "start position", Valid: "positive whole number",
			Actual: strconv.Itoa(n)}
	}
	pc, err := padChar(pad, "pad character")
	if err != nil {
		return "", err
	}
	rest := ""
	if n-1 < len(s) {
		rest = s[n-1:]
	}
	if length == nil {
		return rest, nil
	}
	if *length < 0 {
		return "", errs.BadValue{
			What: "length", Valid: "non-negative whole number",
			Actual: strconv.Itoa(*length)}
	}
	if len(rest) >= *length {
		return rest[:*length], nil
	}
	return rest + strings.Repeat(string(pc), *length-len(rest)), nil
}

func left(s string, length int, pad *string) (string, error) {
	n := 1
	return substr(s, n, &length, pad)
}

func right(s string, length int, pad *string) (string, error) {
	if length < 0 {
		return "", errs.BadValue{
			What: "length", Valid: "non-negative whole number",
			Actual: strconv.Itoa(length)}
	}
	pc, err := padChar(pad, "pad character")
	if err != nil {
		return "", err
	}
	if len(s) >= length {
		return s[len(s)-length:], nil
	}
	return strings.Repeat(string(pc), length-len(s)) + s, nil
}

func pos(needle, haystack string, start *int) (string, error) {
	from := 1
	if start != nil {
		from = *start
	}
	if from < 1 {
		return "", errs.BadValue{
			What: "start position", Valid: "positive whole number",
			Actual: strconv.Itoa(from)}
	}
	if needle == "" || from > len(haystack) {
		return "0", nil
	}
	i := strings.Index(haystack[from-1:], needle)
	if i < 0 {
		return "0", nil
	}
	return strconv.Itoa(from + i), nil
}

func lastPos(needle, haystack string, start *int) (string, error) {
	from := len(haystack)
	if start != nil {
		from = *start
	}
	if from < 1 {
		return "", errs.BadValue{
			What: "start position", Valid: "positive whole number",
			Actual: strconv.Itoa(from)}
	}
	if needle == "" {
		return "0", nil
	}
	// The match may start no later than position from.
	end := from - 1 + len(needle)
	if end > len(haystack) {
		end = len(haystack)
	}
	i := strings.LastIndex(haystack[:end], needle)
	return strconv.Itoa(i + 1), nil
}

func copies(s string, n int) (string, error) {
	if n < 0 {
		return "", errs.BadValue{
			What: "count", Valid: "non-negative whole number",
			Actual: strconv.Itoa(n)}
	}
	return strings.Repeat(s, n), nil
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

func strip(s string, option, char *string) (string, error) {
	opt := "B"
	if option != nil && *option != "" {
		opt = strings.ToUpper((*option)[:1])
	}
	cutset := " "
	if char != nil {
		if len(*char) != 1 {
			return "", errs.BadValue{
				What: "strip character", Valid: "a single character", Actual: *char}
		}
		cutset = *char
	}
	switch opt {
	case "L":
		return strings.TrimLeft(s, cutset), nil
	case "T":
		return strings.TrimRight(s, cutset), nil
	case "B":
		return strings.Trim(s, cutset), nil
	}
	return "", errs.BadValue{What: "strip option", Valid: "B, L or T", Actual: *option}
}

func space(s string, n *int, pad *string) (string, error) {
	gap := 1
	if n != nil {
		gap = *n
	}
	if gap < 0 {
		return "", errs.BadValue{
			What: "gap", Valid: "non-negative whole number",
			Actual: strconv.Itoa(gap)}
	}
	pc, err := padChar(pad, "pad character")
	if err != nil {
		return "", err
	}
	var words []string
	for _, span := range wordBounds(s) {
		words = append(words, s[span[0]:span[1]])
	}
	return strings.Join(words, strings.Repeat(string(pc), gap)), nil
}

func translate(s string, out, in, pad *string) (string, error) {
	if out == nil && in == nil {
		return strings.ToUpper(s), nil
	}
	pc, err := padChar(pad, "pad character")
	if err != nil {
		return "", err
	}
	var outT, inT string
	if out != nil {
		outT = *out
	}
	if in != nil {
		inT = *in
	}
	b := []byte(s)
	for i, c := range b {
		var j int
		if in == nil {
			j = int(c)
		} else {
			j = strings.IndexByte(inT, c)
			if j < 0 {
				continue
			}
		}
		if j < len(outT) {
			b[i] = outT[j]
		} else {
			b[i] = pc
		}
	}
	return string(b), nil
}

// wordBounds returns the byte spans of the blank-delimited words of s.
func wordBounds(s string) [][2]int {
	var spans [][2]int
	i := 0
	for i < len(s) {
		for i < len(s) && s[i] == ' ' {
			i++
		}
		if i >= len(s) {
			break
		}
		start := i
		for i < len(s) && s[i] != ' ' {
			i++
		}
		spans = append(spans, [2]int{start, i})
	}
	return spans
}

func word(s string, n int) (string, error) {
	if n < 1 {
		return "", errs.BadValue{
			What: "word number", Valid: "positive whole number",
			Actual: strconv.Itoa(n)}
	}
	spans := wordBounds(s)
	if n > len(spans) {
		return "", nil
	}
	return s[spans[n-1][0]:spans[n-1][1]], nil
}

func subword(s string, n int, length *int) (string, error) {
	if n < 1 {
		return "", errs.BadValue{
			What: "word number", Valid: "positive whole number",
			Actual: strconv.Itoa(n)}
	}
	spans := wordBounds(s)
	if n > len(spans) {
		return "", nil
	}
	last := len(spans)
	if length != nil {
		if *length < 0 {
			return "", errs.BadValue{
				What: "length", Valid: "non-negative whole number",
				Actual: strconv.Itoa(*length)}
		}
		if *length == 0 {
			return "", nil
		}
		if n-1+*length < last {
			last = n - 1 + *length
		}
	}
	return s[spans[n-1][0]:spans[last-1][1]], nil
}

func wordPos(phrase, s string, start *int) (string, error) {
	from := 1
	if start != nil {
		from = *start
	}
	if from < 1 {
		return "", errs.BadValue{
			What: "start word", Valid: "positive whole number",
			Actual: strconv.Itoa(from)}
	}
	var needle, words []string
	for _, span := range wordBounds(phrase) {
		needle = append(needle, phrase[span[0]:span[1]])
	}
	for _, span := range wordBounds(s) {
		words = append(words, s[span[0]:span[1]])
	}
	if len(needle) == 0 {
		return "0", nil
	}
	for i := from - 1; i+len(needle) <= len(words); i++ {
		match := true
		for j, w := range needle {
			if words[i+j] != w {
				match = false
				break
			}
		}
		if match {
			return strconv.Itoa(i + 1), nil
		}
	}
	return "0", nil
}

func center(s string, length int, pad *string) (string, error) {
	if length < 0 {
		return "", errs.BadValue{
			What: "length", Valid: "non-negative whole number",
			Actual: strconv.Itoa(length)}
	}
	pc, err := padChar(pad, "pad character")
	if err != nil {
		return "", err
	}
	if len(s) >= length {
		off := (len(s) - length) / 2
		return s[off : off+length], nil
	}
	total := length - len(s)
	leftPad := total / 2
	return strings.Repeat(string(pc), leftPad) + s +
		strings.Repeat(string(pc), total-leftPad), nil
}

func d2x(fm *Frame, s string) (string, error) {
	v, err := fm.numCtx().Whole(s)
	if err != nil {
		return "", err
	}
	if v < 0 {
		return "", errs.BadValue{
			What: "D2X argument", Valid: "non-negative whole number", Actual: s}
	}
	return fmt.Sprintf("%X", v), nil
}

func x2d(hex string) (string, error) {
	if hex == "" {
		return "0", nil
	}
	v, ok := new(big.Int).SetString(hex, 16)
	if !ok || v.Sign() < 0 {
		return "", errs.BadValue{
			What: "X2D argument", Valid: "hexadecimal digits", Actual: hex}
	}
	return v.String(), nil
}
