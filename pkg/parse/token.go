package parse

import "github.com/rexlang/rex/pkg/diag"

// TokenKind enumerates the kinds of lexical tokens.
type TokenKind uint8

// Possible TokenKind values.
const (
	EOF TokenKind = iota
	// Sep is a clause separator: a newline or ';'.
	Sep
	// Symbol is an identifier, possibly compound ("stem.tail").
	Symbol
	// Number is a numeric literal.
	Number
	// Str is a string literal of any quote form, including HEREDOCs.
	Str
	// Op is an operator.
	Op
	LParen
	RParen
	Comma
	Colon
)

var kindNames = [...]string{
	"end of code", "clause separator", "symbol", "number", "string",
	"operator", "'('", "')'", "','", "':'",
}

func (k TokenKind) String() string { return kindNames[k] }

// QuoteKind identifies which of the interchangeable literal forms a string
// was written in. It has no semantic significance after parsing.
type QuoteKind uint8

// Possible QuoteKind values.
const (
	NoQuote QuoteKind = iota
	DoubleQuoted
	SingleQuoted
	BackQuoted
	Heredoc
)

var quoteNames = [...]string{"none", "double", "single", "backtick", "heredoc"}

func (q QuoteKind) String() string { return quoteNames[q] }

// Token is a lexical token.
type Token struct {
	Kind TokenKind
	diag.Ranging
	// Text is the raw source text of the token. For Str tokens it is the
	// opening marker only.
	Text string
	// Val is the decoded value of a Str token, with any {name} interpolation
	// markers kept intact.
	Val   string
	Quote QuoteKind
	// SpaceBefore records whether whitespace (or a comment) separated this
	// token from the previous one. It distinguishes abuttal from blank
	// concatenation, and function calls from parenthesized terms.
	SpaceBefore bool
}
