package parse

import "github.com/rexlang/rex/pkg/diag"

// Node is implemented by all AST nodes.
type Node interface {
	diag.Ranger
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Chunk is the root of a parsed program.
type Chunk struct {
	diag.Ranging
	Stmts []Stmt
}

// LabelStmt is a "name:" line. It marks an internal routine entry point and
// a SIGNAL target.
type LabelStmt struct {
	diag.Ranging
	Name string
}

// AssignStmt is "LET name = expr" or the keywordless "name = expr". The
// target may be a compound symbol.
type AssignStmt struct {
	diag.Ranging
	Target *SymbolExpr
	Value  Expr
}

// SayStmt writes its operand and a newline to the output. Value is nil for
// a bare SAY, which writes an empty line.
type SayStmt struct {
	diag.Ranging
	Value Expr
}

// IfStmt is "IF expr THEN stmt [ELSE stmt]".
type IfStmt struct {
	diag.Ranging
	Cond Expr
	Then Stmt
	Else Stmt
}

// DoStmt is a "DO ... END" group. With no loop fields set it is a plain
// block executed once. Counter with From (and optional Limit/Step) is the
// counted form; Repeat is the bare repetition-count form.
type DoStmt struct {
	diag.Ranging
	Counter *SymbolExpr
	From    Expr
	Limit   Expr
	Step    Expr
	Repeat  Expr
	Forever bool
	While   Expr
	Until   Expr
	Body    []Stmt
}

// Loops reports whether the group has any looping specification.
func (d *DoStmt) Loops() bool {
	return d.Counter != nil || d.Repeat != nil || d.Forever ||
		d.While != nil || d.Until != nil
}

// WhenClause is one WHEN arm of a SELECT.
type WhenClause struct {
	diag.Ranging
	Cond Expr
	Body Stmt
}

// SelectStmt is "SELECT; WHEN ... THEN ...; [OTHERWISE ...] END".
type SelectStmt struct {
	diag.Ranging
	Whens        []WhenClause
	Otherwise    []Stmt
	HasOtherwise bool
}

// CallStmt is "CALL name [expr, ...]".
type CallStmt struct {
	diag.Ranging
	Name string
	Args []Expr
}

// ProcedureStmt is "PROCEDURE [EXPOSE name...]".
type ProcedureStmt struct {
	diag.Ranging
	Expose []string
}

// ReturnStmt is "RETURN [expr]".
type ReturnStmt struct {
	diag.Ranging
	Value Expr
}

// ExitStmt is "EXIT [expr]".
type ExitStmt struct {
	diag.Ranging
	Value Expr
}

// SignalStmt covers "SIGNAL label", "SIGNAL ON cond [NAME label]" and
// "SIGNAL OFF cond".
type SignalStmt struct {
	diag.Ranging
	Label     string // jump target; empty for the ON and OFF forms
	On        bool
	Off       bool
	Condition string
	Handler   string // trap label; defaults to the condition name
}

// TemplatePartKind enumerates the kinds of PARSE template elements.
type TemplatePartKind int

const (
	// TmplSymbol assigns the next word (or the remaining text, for the
	// last symbol) to a variable.
	TmplSymbol TemplatePartKind = iota
	// TmplDot skips the next word.
	TmplDot
	// TmplPattern skips ahead past a literal pattern.
	TmplPattern
)

// TemplatePart is one element of a PARSE template.
type TemplatePart struct {
	diag.Ranging
	Kind    TemplatePartKind
	Name    string // for TmplSymbol
	Pattern string // for TmplPattern
}

// ParseStmt is "PARSE [UPPER] VAR name template", "PARSE [UPPER] VALUE
// expr WITH template" or "PARSE [UPPER] ARG template".
type ParseStmt struct {
	diag.Ranging
	Upper    bool
	Var      *SymbolExpr // the VAR form
	Value    Expr        // the VALUE form
	Arg      bool        // the ARG form
	Template []TemplatePart
}

// NumericStmt is "NUMERIC DIGITS expr" or "NUMERIC FUZZ expr". What is
// "DIGITS" or "FUZZ".
type NumericStmt struct {
	diag.Ranging
	What  string
	Value Expr
}

// AddressStmt covers "ADDRESS name [AUTH expr]", the bare swap form, and
// "ADDRESS VALUE expr".
type AddressStmt struct {
	diag.Ranging
	Target string
	Auth   Expr
	Value  Expr
	Swap   bool
}

// CommandStmt is a clause with no instruction keyword. When the clause
// starts with a bare symbol, Head holds its name and Args the following
// blank-separated operands, so the evaluator can try it as an operation.
// Otherwise the whole clause evaluates as Cmd and the result is dispatched
// to the active target.
type CommandStmt struct {
	diag.Ranging
	Cmd  Expr
	Head string
	Args []Expr
}

// RequireStmt is "REQUIRE specifier".
type RequireStmt struct {
	diag.Ranging
	Spec Expr
}

// DropStmt is "DROP name...".
type DropStmt struct {
	diag.Ranging
	Names []*SymbolExpr
}

// NopStmt is "NOP".
type NopStmt struct {
	diag.Ranging
}

// LeaveStmt is "LEAVE [name]".
type LeaveStmt struct {
	diag.Ranging
	Name string
}

// IterateStmt is "ITERATE [name]".
type IterateStmt struct {
	diag.Ranging
	Name string
}

func (*LabelStmt) stmtNode()     {}
func (*AssignStmt) stmtNode()    {}
func (*SayStmt) stmtNode()       {}
func (*IfStmt) stmtNode()        {}
func (*DoStmt) stmtNode()        {}
func (*SelectStmt) stmtNode()    {}
func (*CallStmt) stmtNode()      {}
func (*ProcedureStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()    {}
func (*ExitStmt) stmtNode()      {}
func (*SignalStmt) stmtNode()    {}
func (*ParseStmt) stmtNode()     {}
func (*NumericStmt) stmtNode()   {}
func (*AddressStmt) stmtNode()   {}
func (*CommandStmt) stmtNode()   {}
func (*RequireStmt) stmtNode()   {}
func (*DropStmt) stmtNode()      {}
func (*NopStmt) stmtNode()       {}
func (*LeaveStmt) stmtNode()     {}
func (*IterateStmt) stmtNode()   {}

// StringLit is a literal of any quote form. Val is the literal body with
// delimiter escapes resolved; interpolation markers are kept for the
// evaluator.
type StringLit struct {
	diag.Ranging
	Val   string
	Quote QuoteKind
}

// NumberLit is a numeric literal, kept in source form.
type NumberLit struct {
	diag.Ranging
	Text string
}

// SymbolExpr is a variable reference, normalized to upper case. A compound
// symbol (with a "." after its first character) has its tail substituted
// at evaluation time.
type SymbolExpr struct {
	diag.Ranging
	Name string
}

// UnaryExpr is a prefix operation: "+", "-" or "\".
type UnaryExpr struct {
	diag.Ranging
	Op      string
	Operand Expr
}

// BinExpr is a binary operation. Concatenation uses Op "||" for abuttal
// and the explicit operator, and Op " " for blank concatenation.
type BinExpr struct {
	diag.Ranging
	Op       string
	LHS, RHS Expr
}

// CallExpr is a function call "NAME(args)". The name is normalized to
// upper case.
type CallExpr struct {
	diag.Ranging
	Name string
	Args []Expr
}

func (*StringLit) exprNode()  {}
func (*NumberLit) exprNode()  {}
func (*SymbolExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
func (*BinExpr) exprNode()    {}
func (*CallExpr) exprNode()   {}
