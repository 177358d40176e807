// Package parse implements parsing of Rex source code into an abstract
// syntax tree.
//
// The language is clause oriented. Clauses are separated by newlines or
// semicolons; a comma at the end of a line continues the clause on the next
// line. Instruction keywords are contextual: a clause is recognized as an
// assignment or a label from its first two tokens before any keyword is
// considered, so keywords remain usable as variable names.
//
// String literals come in four interchangeable forms: double-quoted,
// single-quoted, back-quoted, and <<LABEL heredocs terminated by a line
// holding only the label. The quote form is recorded in the AST but has no
// semantic weight. Interpolation markers inside literals are left for the
// evaluator.
package parse

import "github.com/rexlang/rex/pkg/diag"

// Error is the type of parse errors.
type Error = diag.Error

const errorType = "parse error"

// Tree is the result of parsing: the root node plus the source it was
// parsed from.
type Tree struct {
	Root   *Chunk
	Source Source
}

// Parse parses the given source into a Tree. The returned error is nil or
// contains one or more parse errors, accessible with UnpackErrors.
func Parse(src Source) (Tree, error) {
	tokens, lexErrs := lex(src.Name, src.Code)
	p := &parser{srcName: src.Name, src: src.Code, tokens: tokens, errors: lexErrs}
	root := p.chunk()
	return Tree{root, src}, diag.PackErrors(p.errors)
}

// UnpackErrors returns the constituent parse errors inside an error
// returned by Parse, and nil if the error contains none.
func UnpackErrors(e error) []*Error {
	return diag.UnpackErrors(e)
}
