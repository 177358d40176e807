package parse

import (
	"fmt"
	"strings"

	"github.com/rexlang/rex/pkg/diag"
)

// lexer scans source text into tokens. Errors are accumulated rather than
// aborting the scan, so the parser can report as much as possible in one go.
type lexer struct {
	srcName string
	src     string
	pos     int
	tokens  []Token
	errors  []*Error

	spaceBefore bool
	// Byte range of a pending HEREDOC body, skipped when the scan reaches
	// the end of the line its marker appeared on. endLine is the offset just
	// past the terminating label line.
	skipFrom, skipTo int
	heredocOpen      bool
}

func lex(srcName, src string) ([]Token, []*Error) {
	lx := &lexer{srcName: srcName, src: src}
	lx.run()
	return lx.tokens, lx.errors
}

const eof rune = -1

func (lx *lexer) peek() byte {
	if lx.pos >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos]
}

func (lx *lexer) peekAt(n int) byte {
	if lx.pos+n >= len(lx.src) {
		return 0
	}
	return lx.src[lx.pos+n]
}

func (lx *lexer) eof() bool { return lx.pos >= len(lx.src) }

func (lx *lexer) errorf(r diag.Ranging, format string, args ...any) {
	lx.errors = append(lx.errors, &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(lx.srcName, lx.src, r),
		Partial: lx.pos >= len(lx.src),
	})
}

func (lx *lexer) emit(kind TokenKind, from int, text string) {
	lx.tokens = append(lx.tokens, Token{
		Kind: kind, Ranging: diag.Ranging{From: from, To: lx.pos},
		Text: text, SpaceBefore: lx.spaceBefore,
	})
	lx.spaceBefore = false
}

func (lx *lexer) emitStr(from int, val string, quote QuoteKind) {
	lx.tokens = append(lx.tokens, Token{
		Kind: Str, Ranging: diag.Ranging{From: from, To: lx.pos},
		Text: lx.src[from:lx.pos], Val: val, Quote: quote,
		SpaceBefore: lx.spaceBefore,
	})
	lx.spaceBefore = false
}

func (lx *lexer) run() {
	for !lx.eof() {
		c := lx.peek()
		switch {
		case c == ' ' || c == '\t':
			lx.pos++
			lx.spaceBefore = true
		case c == '\n' || c == '\r':
			lx.newline()
		case c == ';':
			from := lx.pos
			lx.pos++
			lx.emit(Sep, from, ";")
		case c == '-' && lx.peekAt(1) == '-':
			lx.lineComment()
		case c == '/' && lx.peekAt(1) == '*':
			lx.blockComment()
		case c == '\'' || c == '"' || c == '`':
			lx.quoted(rune(c))
		case c == '<' && lx.peekAt(1) == '<' && isSymbolStart(lx.peekAt(2)):
			lx.heredocMarker()
		case c >= '0' && c <= '9' || c == '.' && isDigit(lx.peekAt(1)):
			lx.number()
		case isSymbolStart(c):
			lx.symbol()
		case c == '(':
			from := lx.pos
			lx.pos++
			lx.emit(LParen, from, "(")
		case c == ')':
			from := lx.pos
			lx.pos++
			lx.emit(RParen, from, ")")
		case c == ',':
			lx.comma()
		case c == ':':
			from := lx.pos
			lx.pos++
			lx.emit(Colon, from, ":")
		default:
			if op := lx.operator(); op == "" {
				from := lx.pos
				lx.pos++
				lx.errorf(diag.Ranging{From: from, To: lx.pos},
					"unexpected character %q", c)
				lx.spaceBefore = true
			}
		}
	}
	if lx.heredocOpen {
		lx.errorf(diag.PointRanging(len(lx.src)), "heredoc not terminated")
	}
	lx.emit(EOF, lx.pos, "")
}

// newline emits a Sep and, if a HEREDOC body is pending on this line, jumps
// the scan past the body and its terminating label line.
func (lx *lexer) newline() {
	from := lx.pos
	if lx.peek() == '\r' {
		lx.pos++
	}
	if lx.peek() == '\n' {
		lx.pos++
	}
	lx.emit(Sep, from, "\n")
	if lx.heredocOpen {
		lx.pos = lx.skipTo
		lx.heredocOpen = false
	}
}

func (lx *lexer) lineComment() {
	lx.spaceBefore = true
	for !lx.eof() && lx.peek() != '\n' && lx.peek() != '\r' {
		lx.pos++
	}
}

// blockComment skips a nested /* ... */ comment.
func (lx *lexer) blockComment() {
	from := lx.pos
	lx.spaceBefore = true
	lx.pos += 2
	depth := 1
	for depth > 0 {
		if lx.eof() {
			lx.errorf(diag.Ranging{From: from, To: from + 2}, "comment not terminated")
			return
		}
		switch {
		case lx.peek() == '/' && lx.peekAt(1) == '*':
			depth++
			lx.pos += 2
		case lx.peek() == '*' && lx.peekAt(1) == '/':
			depth--
			lx.pos += 2
		default:
			lx.pos++
		}
	}
}

// quoted scans a single-line string literal delimited by q. Doubling the
// delimiter escapes it; quotes of the other kinds are ordinary content.
func (lx *lexer) quoted(q rune) {
	from := lx.pos
	lx.pos++
	var sb strings.Builder
	for {
		if lx.eof() || lx.peek() == '\n' || lx.peek() == '\r' {
			lx.errorf(diag.Ranging{From: from, To: lx.pos}, "string not terminated")
			break
		}
		c := lx.peek()
		lx.pos++
		if rune(c) == q {
			if rune(lx.peek()) == q {
				// Doubled delimiter.
				lx.pos++
				sb.WriteByte(c)
				continue
			}
			break
		}
		sb.WriteByte(c)
	}
	var quote QuoteKind
	switch q {
	case '"':
		quote = DoubleQuoted
	case '\'':
		quote = SingleQuoted
	case '`':
		quote = BackQuoted
	}
	lx.emitStr(from, sb.String(), quote)
}

// heredocMarker scans a <<LABEL marker and locates the body, which runs from
// the line after the marker's line to a line holding only the label. The
// body region is skipped when the scan reaches the end of the current line.
func (lx *lexer) heredocMarker() {
	from := lx.pos
	lx.pos += 2
	labelFrom := lx.pos
	for !lx.eof() && isSymbolChar(lx.peek()) {
		lx.pos++
	}
	label := lx.src[labelFrom:lx.pos]
	if lx.heredocOpen {
		lx.errorf(diag.Ranging{From: from, To: lx.pos},
			"only one heredoc per line")
		return
	}

	// Find the body without consuming it.
	lineEnd := strings.IndexByte(lx.src[lx.pos:], '\n')
	if lineEnd < 0 {
		lx.errorf(diag.Ranging{From: from, To: lx.pos}, "heredoc not terminated")
		return
	}
	bodyFrom := lx.pos + lineEnd + 1
	scan := bodyFrom
	var bodyTo, skipTo int
	for {
		if scan > len(lx.src) {
			lx.errorf(diag.Ranging{From: from, To: lx.pos}, "heredoc not terminated")
			return
		}
		next := strings.IndexByte(lx.src[scan:], '\n')
		var line string
		var lineTo int
		if next < 0 {
			line, lineTo = lx.src[scan:], len(lx.src)
		} else {
			line, lineTo = lx.src[scan:scan+next], scan+next+1
		}
		if strings.Trim(strings.TrimSuffix(line, "\r"), " \t") == label {
			bodyTo, skipTo = scan, lineTo
			break
		}
		if next < 0 {
			lx.errorf(diag.Ranging{From: from, To: lx.pos}, "heredoc not terminated")
			return
		}
		scan = lineTo
	}

	body := lx.src[bodyFrom:bodyTo]
	body = strings.TrimSuffix(body, "\n")
	body = strings.TrimSuffix(body, "\r")
	lx.emitStr(from, body, Heredoc)
	lx.heredocOpen = true
	lx.skipFrom, lx.skipTo = bodyFrom, skipTo
}

func (lx *lexer) number() {
	from := lx.pos
	for isDigit(lx.peek()) {
		lx.pos++
	}
	if lx.peek() == '.' && isDigit(lx.peekAt(1)) {
		lx.pos++
		for isDigit(lx.peek()) {
			lx.pos++
		}
	}
	if c := lx.peek(); c == 'e' || c == 'E' {
		save := lx.pos
		lx.pos++
		if c := lx.peek(); c == '+' || c == '-' {
			lx.pos++
		}
		if !isDigit(lx.peek()) {
			// Not an exponent after all; E starts a symbol (as in "1E").
			lx.pos = save
		} else {
			for isDigit(lx.peek()) {
				lx.pos++
			}
		}
	}
	if isSymbolChar(lx.peek()) {
		bad := lx.pos
		for isSymbolChar(lx.peek()) {
			lx.pos++
		}
		lx.errorf(diag.Ranging{From: bad, To: lx.pos}, "invalid number")
		return
	}
	lx.emit(Number, from, lx.src[from:lx.pos])
}

func (lx *lexer) symbol() {
	from := lx.pos
	for isSymbolChar(lx.peek()) {
		lx.pos++
	}
	lx.emit(Symbol, from, lx.src[from:lx.pos])
}

// comma handles both the argument separator and the classic line
// continuation: a comma that ends a line (barring trailing blanks and
// comments) joins the next line to the current clause with a blank.
func (lx *lexer) comma() {
	from := lx.pos
	lx.pos++
	save := lx.pos
	for {
		switch {
		case lx.peek() == ' ' || lx.peek() == '\t':
			lx.pos++
		case lx.peek() == '-' && lx.peekAt(1) == '-':
			for !lx.eof() && lx.peek() != '\n' && lx.peek() != '\r' {
				lx.pos++
			}
		default:
			if lx.eof() || lx.peek() == '\n' || lx.peek() == '\r' {
				// Continuation: swallow the line ending; no token.
				if lx.peek() == '\r' {
					lx.pos++
				}
				if lx.peek() == '\n' {
					lx.pos++
				}
				lx.spaceBefore = true
				return
			}
			lx.pos = save
			lx.emit(Comma, from, ",")
			return
		}
	}
}

var operators = []string{
	"||", "**", "//", "==", "\\==", "\\=", "<=", ">=", "<>", "><", "&&",
	"=", "<", ">", "&", "|", "\\", "+", "-", "*", "/", "%", ".",
}

func (lx *lexer) operator() string {
	rest := lx.src[lx.pos:]
	for _, op := range operators {
		if strings.HasPrefix(rest, op) {
			from := lx.pos
			lx.pos += len(op)
			lx.emit(Op, from, op)
			return op
		}
	}
	return ""
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSymbolStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' ||
		c == '_' || c == '!' || c == '?' || c == '#' || c == '$' || c == '@'
}

func isSymbolChar(c byte) bool {
	return isSymbolStart(c) || isDigit(c) || c == '.'
}
