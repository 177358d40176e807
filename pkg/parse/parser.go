package parse

import (
	"fmt"
	"strings"

	"github.com/rexlang/rex/pkg/diag"
)

// parser builds the AST from a token stream. Like the lexer it accumulates
// errors and keeps going, resynchronizing at clause boundaries, so a single
// pass reports as many problems as possible.
type parser struct {
	srcName string
	src     string
	tokens  []Token
	pos     int
	errors  []*Error

	// Contextual keywords that end the expression being parsed, like THEN
	// in an IF condition. Cleared inside parentheses.
	stops map[string]bool
}

func (p *parser) cur() Token { return p.tokens[p.pos] }

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) prevTo() int { return p.tokens[p.pos-1].To }

func (p *parser) at(kind TokenKind) bool { return p.cur().Kind == kind }

func (p *parser) atOp(text string) bool {
	t := p.cur()
	return t.Kind == Op && t.Text == text
}

func (p *parser) atKeyword(words ...string) bool {
	t := p.cur()
	if t.Kind != Symbol {
		return false
	}
	u := strings.ToUpper(t.Text)
	for _, w := range words {
		if u == w {
			return true
		}
	}
	return false
}

func (p *parser) acceptKeyword(word string) bool {
	if p.atKeyword(word) {
		p.next()
		return true
	}
	return false
}

func (p *parser) skipSeps() {
	for p.at(Sep) {
		p.next()
	}
}

func (p *parser) rangeFrom(from int) diag.Ranging {
	return diag.Ranging{From: from, To: p.prevTo()}
}

func (p *parser) errorf(r diag.Ranging, format string, args ...any) {
	p.errors = append(p.errors, &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(p.srcName, p.src, r),
		Partial: p.at(EOF),
	})
}

// syncClause skips to the next clause boundary after an error.
func (p *parser) syncClause() {
	for !p.at(EOF) && !p.at(Sep) {
		p.pos++
	}
}

// endClause consumes the separator that ends a clause. A clause that runs
// into something else is reported once and skipped to the next boundary.
func (p *parser) endClause() {
	if p.at(EOF) {
		return
	}
	if p.at(Sep) {
		p.skipSeps()
		return
	}
	t := p.cur()
	if n := len(p.errors); n == 0 || p.errors[n-1].Context.To <= t.From {
		p.errorf(t.Ranging, "should be newline or ';'")
	}
	p.syncClause()
	p.skipSeps()
}

func (p *parser) chunk() *Chunk {
	from := p.cur().From
	var stmts []Stmt
	p.skipSeps()
	for !p.at(EOF) {
		if st := p.stmt(); st != nil {
			stmts = append(stmts, st)
		}
		p.endClause()
	}
	return &Chunk{diag.Ranging{From: from, To: p.cur().To}, stmts}
}

// stmt parses one clause. Assignments and labels are recognized from the
// clause's first two tokens before any keyword, so instruction keywords
// stay usable as variable names, as in classic REXX.
func (p *parser) stmt() Stmt {
	t := p.cur()
	if t.Kind == Symbol {
		switch nt := p.tokens[p.pos+1]; {
		case nt.Kind == Op && nt.Text == "=":
			return p.assignStmt(t.From)
		case nt.Kind == Colon:
			p.pos += 2
			return &LabelStmt{p.rangeFrom(t.From), strings.ToUpper(t.Text)}
		}
		switch strings.ToUpper(t.Text) {
		case "LET":
			p.next()
			return p.assignStmt(t.From)
		case "SAY":
			return p.sayStmt()
		case "IF":
			return p.ifStmt()
		case "DO":
			return p.doStmt()
		case "SELECT":
			return p.selectStmt()
		case "CALL":
			return p.callStmt()
		case "PROCEDURE":
			return p.procedureStmt()
		case "RETURN":
			return p.returnStmt()
		case "EXIT":
			return p.exitStmt()
		case "SIGNAL":
			return p.signalStmt()
		case "PARSE":
			return p.parseStmt()
		case "NUMERIC":
			return p.numericStmt()
		case "ADDRESS":
			return p.addressStmt()
		case "REQUIRE":
			return p.requireStmt()
		case "DROP":
			return p.dropStmt()
		case "NOP":
			p.next()
			return &NopStmt{t.Ranging}
		case "LEAVE":
			p.next()
			return &LeaveStmt{p.rangeFrom(t.From), p.optionalName()}
		case "ITERATE":
			p.next()
			return &IterateStmt{p.rangeFrom(t.From), p.optionalName()}
		case "THEN", "ELSE", "END", "WHEN", "OTHERWISE":
			p.errorf(t.Ranging, "unexpected %s", strings.ToUpper(t.Text))
			p.syncClause()
			return nil
		}
	}
	return p.commandStmt()
}

func (p *parser) assignStmt(from int) Stmt {
	target := p.symbol()
	p.expectOp("=")
	val := p.expr()
	return &AssignStmt{p.rangeFrom(from), target, val}
}

func (p *parser) sayStmt() Stmt {
	from := p.next().From
	var val Expr
	if !p.at(Sep) && !p.at(EOF) {
		val = p.expr()
	}
	return &SayStmt{p.rangeFrom(from), val}
}

func (p *parser) ifStmt() Stmt {
	from := p.next().From
	cond := p.exprUntil("THEN")
	p.skipSeps()
	if !p.acceptKeyword("THEN") {
		p.errorf(diag.PointRanging(p.cur().From), "should be THEN")
		p.syncClause()
		return &IfStmt{p.rangeFrom(from), cond, nil, nil}
	}
	p.skipSeps()
	then := p.stmt()
	// ELSE may follow on the same line after ";" or on a later line.
	save := p.pos
	p.skipSeps()
	if p.acceptKeyword("ELSE") {
		p.skipSeps()
		els := p.stmt()
		return &IfStmt{p.rangeFrom(from), cond, then, els}
	}
	p.pos = save
	return &IfStmt{p.rangeFrom(from), cond, then, nil}
}

func (p *parser) doStmt() Stmt {
	from := p.next().From
	d := &DoStmt{}
	t := p.cur()
	switch {
	case t.Kind == Symbol && p.tokens[p.pos+1].Kind == Op && p.tokens[p.pos+1].Text == "=" &&
		!p.atKeyword("WHILE", "UNTIL", "FOREVER"):
		d.Counter = p.symbol()
		p.next()
		d.From = p.exprUntil("TO", "BY", "WHILE", "UNTIL")
	specLoop:
		for {
			switch {
			case d.Limit == nil && p.atKeyword("TO"):
				p.next()
				d.Limit = p.exprUntil("TO", "BY", "WHILE", "UNTIL")
			case d.Step == nil && p.atKeyword("BY"):
				p.next()
				d.Step = p.exprUntil("TO", "BY", "WHILE", "UNTIL")
			default:
				break specLoop
			}
		}
	case p.atKeyword("FOREVER"):
		p.next()
		d.Forever = true
	case t.Kind == Sep || t.Kind == EOF || p.atKeyword("WHILE", "UNTIL"):
		// Plain group, or WHILE/UNTIL handled below.
	default:
		d.Repeat = p.exprUntil("WHILE", "UNTIL")
	}
	switch {
	case p.acceptKeyword("WHILE"):
		d.While = p.expr()
	case p.acceptKeyword("UNTIL"):
		d.Until = p.expr()
	}
	d.Body = p.body("END")
	p.expectEnd(d.Counter)
	d.Ranging = p.rangeFrom(from)
	return d
}

// body parses statements until one of the stop keywords starts a clause.
// The keyword itself is left for the caller.
func (p *parser) body(stopAt ...string) []Stmt {
	var stmts []Stmt
	p.skipSeps()
	for {
		if p.at(EOF) || p.atKeyword(stopAt...) {
			return stmts
		}
		if st := p.stmt(); st != nil {
			stmts = append(stmts, st)
		}
		if p.at(EOF) || p.atKeyword(stopAt...) {
			return stmts
		}
		p.endClause()
	}
}

// expectEnd consumes the END that closes a DO or SELECT. An END may repeat
// the loop counter name.
func (p *parser) expectEnd(counter *SymbolExpr) {
	if !p.acceptKeyword("END") {
		p.errorf(diag.PointRanging(p.cur().From), "should be END")
		return
	}
	if p.at(Symbol) {
		t := p.next()
		if counter == nil || strings.ToUpper(t.Text) != counter.Name {
			p.errorf(t.Ranging, "END names no enclosing loop counter")
		}
	}
}

func (p *parser) selectStmt() Stmt {
	from := p.next().From
	s := &SelectStmt{}
	p.skipSeps()
	for {
		switch {
		case p.atKeyword("WHEN"):
			wfrom := p.next().From
			cond := p.exprUntil("THEN")
			p.skipSeps()
			if !p.acceptKeyword("THEN") {
				p.errorf(diag.PointRanging(p.cur().From), "should be THEN")
				p.syncClause()
			} else {
				p.skipSeps()
				body := p.stmt()
				s.Whens = append(s.Whens, WhenClause{p.rangeFrom(wfrom), cond, body})
			}
			p.endClause()
		case p.atKeyword("OTHERWISE"):
			p.next()
			s.HasOtherwise = true
			s.Otherwise = p.body("END")
		case p.atKeyword("END"), p.at(EOF):
			p.expectEnd(nil)
			s.Ranging = p.rangeFrom(from)
			return s
		default:
			p.errorf(p.cur().Ranging, "should be WHEN, OTHERWISE or END")
			p.syncClause()
			p.skipSeps()
		}
	}
}

func (p *parser) callStmt() Stmt {
	from := p.next().From
	if !p.at(Symbol) {
		p.errorf(diag.PointRanging(p.cur().From), "should be a routine name")
		p.syncClause()
		return nil
	}
	name := strings.ToUpper(p.next().Text)
	var args []Expr
	if !p.at(Sep) && !p.at(EOF) {
		args = append(args, p.expr())
		for p.at(Comma) {
			p.next()
			args = append(args, p.expr())
		}
	}
	return &CallStmt{p.rangeFrom(from), name, args}
}

func (p *parser) procedureStmt() Stmt {
	from := p.next().From
	var expose []string
	if p.acceptKeyword("EXPOSE") {
		for p.at(Symbol) {
			expose = append(expose, strings.ToUpper(p.next().Text))
		}
		if len(expose) == 0 {
			p.errorf(diag.PointRanging(p.cur().From), "should be a name to expose")
		}
	}
	return &ProcedureStmt{p.rangeFrom(from), expose}
}

func (p *parser) returnStmt() Stmt {
	from := p.next().From
	var val Expr
	if !p.at(Sep) && !p.at(EOF) {
		val = p.expr()
	}
	return &ReturnStmt{p.rangeFrom(from), val}
}

func (p *parser) exitStmt() Stmt {
	from := p.next().From
	var val Expr
	if !p.at(Sep) && !p.at(EOF) {
		val = p.expr()
	}
	return &ExitStmt{p.rangeFrom(from), val}
}

func (p *parser) signalStmt() Stmt {
	from := p.next().From
	switch {
	case p.atKeyword("ON"):
		p.next()
		cond := p.conditionName()
		handler := cond
		if p.acceptKeyword("NAME") {
			if p.at(Symbol) {
				handler = strings.ToUpper(p.next().Text)
			} else {
				p.errorf(diag.PointRanging(p.cur().From), "should be a label name")
			}
		}
		return &SignalStmt{Ranging: p.rangeFrom(from), On: true, Condition: cond, Handler: handler}
	case p.atKeyword("OFF"):
		p.next()
		cond := p.conditionName()
		return &SignalStmt{Ranging: p.rangeFrom(from), Off: true, Condition: cond}
	case p.at(Symbol):
		label := strings.ToUpper(p.next().Text)
		return &SignalStmt{Ranging: p.rangeFrom(from), Label: label}
	default:
		p.errorf(diag.PointRanging(p.cur().From), "should be a label, ON or OFF")
		p.syncClause()
		return nil
	}
}

func (p *parser) conditionName() string {
	t := p.cur()
	if t.Kind != Symbol {
		p.errorf(diag.PointRanging(t.From), "should be a condition name")
		return "ERROR"
	}
	p.next()
	name := strings.ToUpper(t.Text)
	switch name {
	case "ERROR", "FAILURE", "NOVALUE", "SYNTAX", "HALT":
		return name
	}
	p.errorf(t.Ranging, "unknown condition %s", name)
	return name
}

func (p *parser) parseStmt() Stmt {
	from := p.next().From
	st := &ParseStmt{Upper: p.acceptKeyword("UPPER")}
	switch {
	case p.acceptKeyword("VAR"):
		st.Var = p.symbol()
	case p.acceptKeyword("VALUE"):
		st.Value = p.exprUntil("WITH")
		if !p.acceptKeyword("WITH") {
			p.errorf(diag.PointRanging(p.cur().From), "should be WITH")
		}
	case p.acceptKeyword("ARG"):
		st.Arg = true
	default:
		p.errorf(diag.PointRanging(p.cur().From), "should be VAR, VALUE or ARG")
		p.syncClause()
		return nil
	}
	st.Template = p.template()
	st.Ranging = p.rangeFrom(from)
	return st
}

func (p *parser) template() []TemplatePart {
	var parts []TemplatePart
	for {
		t := p.cur()
		switch {
		case t.Kind == Symbol:
			p.next()
			parts = append(parts, TemplatePart{t.Ranging, TmplSymbol, strings.ToUpper(t.Text), ""})
		case t.Kind == Op && t.Text == ".":
			p.next()
			parts = append(parts, TemplatePart{t.Ranging, TmplDot, "", ""})
		case t.Kind == Str:
			p.next()
			parts = append(parts, TemplatePart{t.Ranging, TmplPattern, "", t.Val})
		default:
			return parts
		}
	}
}

func (p *parser) numericStmt() Stmt {
	from := p.next().From
	var what string
	switch {
	case p.acceptKeyword("DIGITS"):
		what = "DIGITS"
	case p.acceptKeyword("FUZZ"):
		what = "FUZZ"
	default:
		p.errorf(diag.PointRanging(p.cur().From), "should be DIGITS or FUZZ")
		p.syncClause()
		return nil
	}
	var val Expr
	if !p.at(Sep) && !p.at(EOF) {
		val = p.expr()
	}
	return &NumericStmt{p.rangeFrom(from), what, val}
}

func (p *parser) addressStmt() Stmt {
	from := p.next().From
	switch {
	case p.at(Sep) || p.at(EOF):
		return &AddressStmt{Ranging: p.rangeFrom(from), Swap: true}
	case p.atKeyword("VALUE"):
		p.next()
		return &AddressStmt{Ranging: p.rangeFrom(from), Value: p.expr()}
	case p.at(Symbol):
		name := strings.ToUpper(p.next().Text)
		var auth Expr
		if p.acceptKeyword("AUTH") {
			auth = p.expr()
		}
		return &AddressStmt{Ranging: p.rangeFrom(from), Target: name, Auth: auth}
	case p.at(Str):
		t := p.next()
		var auth Expr
		if p.acceptKeyword("AUTH") {
			auth = p.expr()
		}
		return &AddressStmt{Ranging: p.rangeFrom(from), Target: strings.ToUpper(t.Val), Auth: auth}
	default:
		p.errorf(diag.PointRanging(p.cur().From), "should be a target name or VALUE")
		p.syncClause()
		return nil
	}
}

func (p *parser) requireStmt() Stmt {
	from := p.next().From
	return &RequireStmt{p.rangeFrom(from), p.expr()}
}

func (p *parser) dropStmt() Stmt {
	from := p.next().From
	var names []*SymbolExpr
	for p.at(Symbol) {
		names = append(names, p.symbol())
	}
	if len(names) == 0 {
		p.errorf(diag.PointRanging(p.cur().From), "should be a name to drop")
	}
	return &DropStmt{p.rangeFrom(from), names}
}

// commandStmt parses a keywordless clause. The whole clause is one
// expression; when it is a blank-separated chain led by a bare symbol, the
// head and operands are recorded so the evaluator can try the head as an
// operation name first.
func (p *parser) commandStmt() Stmt {
	from := p.cur().From
	e := p.expr()
	cmd := &CommandStmt{Ranging: p.rangeFrom(from), Cmd: e}
	ops := flattenBlanks(e)
	if head, ok := ops[0].(*SymbolExpr); ok {
		cmd.Head = head.Name
		cmd.Args = ops[1:]
	}
	return cmd
}

// flattenBlanks returns the operands of a top-level blank-concatenation
// chain in source order, or the expression itself when it is not one.
func flattenBlanks(e Expr) []Expr {
	if b, ok := e.(*BinExpr); ok && b.Op == " " {
		return append(flattenBlanks(b.LHS), flattenBlanks(b.RHS)...)
	}
	return []Expr{e}
}

func (p *parser) optionalName() string {
	if p.at(Symbol) {
		return strings.ToUpper(p.next().Text)
	}
	return ""
}

func (p *parser) symbol() *SymbolExpr {
	t := p.cur()
	if t.Kind != Symbol {
		p.errorf(diag.PointRanging(t.From), "should be a symbol")
		return &SymbolExpr{diag.PointRanging(t.From), "_"}
	}
	p.next()
	return &SymbolExpr{t.Ranging, strings.ToUpper(t.Text)}
}

func (p *parser) expectOp(text string) {
	if p.atOp(text) {
		p.next()
		return
	}
	p.errorf(diag.PointRanging(p.cur().From), "should be '%s'", text)
}

// Expressions, from loosest to tightest binding. The precedence ladder is
// the classic REXX one: prefix operators, then power, multiplicative,
// additive, concatenation, comparison, and, or.

func (p *parser) expr() Expr { return p.orExpr() }

// exprUntil parses an expression that additionally ends before any of the
// given contextual keywords.
func (p *parser) exprUntil(stopAt ...string) Expr {
	saved := p.stops
	p.stops = make(map[string]bool, len(stopAt))
	for _, s := range stopAt {
		p.stops[s] = true
	}
	e := p.expr()
	p.stops = saved
	return e
}

func (p *parser) stopped() bool {
	t := p.cur()
	return t.Kind == Symbol && p.stops[strings.ToUpper(t.Text)]
}

func (p *parser) orExpr() Expr {
	e := p.andExpr()
	for p.atOp("|") || p.atOp("&&") {
		op := p.next()
		rhs := p.andExpr()
		e = &BinExpr{diag.MixedRanging(e, rhs), op.Text, e, rhs}
	}
	return e
}

func (p *parser) andExpr() Expr {
	e := p.compExpr()
	for p.atOp("&") {
		p.next()
		rhs := p.compExpr()
		e = &BinExpr{diag.MixedRanging(e, rhs), "&", e, rhs}
	}
	return e
}

var compOps = map[string]bool{
	"=": true, "==": true, "\\=": true, "\\==": true,
	"<>": true, "><": true, ">": true, "<": true, ">=": true, "<=": true,
}

func (p *parser) compExpr() Expr {
	e := p.concatExpr()
	for p.at(Op) && compOps[p.cur().Text] {
		op := p.next()
		rhs := p.concatExpr()
		e = &BinExpr{diag.MixedRanging(e, rhs), op.Text, e, rhs}
	}
	return e
}

func (p *parser) concatExpr() Expr {
	e := p.addExpr()
	for {
		switch {
		case p.atOp("||"):
			p.next()
			rhs := p.addExpr()
			e = &BinExpr{diag.MixedRanging(e, rhs), "||", e, rhs}
		case p.adjacent():
			op := "||"
			if p.cur().SpaceBefore {
				op = " "
			}
			rhs := p.addExpr()
			e = &BinExpr{diag.MixedRanging(e, rhs), op, e, rhs}
		default:
			return e
		}
	}
}

// adjacent reports whether the next token begins a new operand abutting
// the current one. Adjacent operands concatenate, with a blank in between
// when the tokens were separated by whitespace.
func (p *parser) adjacent() bool {
	if p.stopped() {
		return false
	}
	switch p.cur().Kind {
	case Number, Str, Symbol, LParen:
		return true
	}
	return false
}

func (p *parser) addExpr() Expr {
	e := p.mulExpr()
	for p.atOp("+") || p.atOp("-") {
		op := p.next()
		rhs := p.mulExpr()
		e = &BinExpr{diag.MixedRanging(e, rhs), op.Text, e, rhs}
	}
	return e
}

func (p *parser) mulExpr() Expr {
	e := p.powExpr()
	for p.atOp("*") || p.atOp("/") || p.atOp("%") || p.atOp("//") {
		op := p.next()
		rhs := p.powExpr()
		e = &BinExpr{diag.MixedRanging(e, rhs), op.Text, e, rhs}
	}
	return e
}

func (p *parser) powExpr() Expr {
	e := p.unaryExpr()
	for p.atOp("**") {
		p.next()
		rhs := p.unaryExpr()
		e = &BinExpr{diag.MixedRanging(e, rhs), "**", e, rhs}
	}
	return e
}

func (p *parser) unaryExpr() Expr {
	t := p.cur()
	if t.Kind == Op && (t.Text == "+" || t.Text == "-" || t.Text == "\\") {
		p.next()
		operand := p.unaryExpr()
		return &UnaryExpr{diag.MixedRanging(t, operand), t.Text, operand}
	}
	return p.primary()
}

func (p *parser) primary() Expr {
	t := p.cur()
	if p.stopped() {
		p.errorf(diag.PointRanging(t.From), "should be an expression")
		return &StringLit{diag.PointRanging(t.From), "", DoubleQuoted}
	}
	switch t.Kind {
	case Number:
		p.next()
		return &NumberLit{t.Ranging, t.Text}
	case Str:
		p.next()
		return &StringLit{t.Ranging, t.Val, t.Quote}
	case Symbol:
		p.next()
		if p.at(LParen) && !p.cur().SpaceBefore {
			return p.callExpr(t)
		}
		return &SymbolExpr{t.Ranging, strings.ToUpper(t.Text)}
	case LParen:
		p.next()
		saved := p.stops
		p.stops = nil
		e := p.expr()
		p.stops = saved
		if p.at(RParen) {
			p.next()
		} else {
			p.errorf(diag.PointRanging(p.cur().From), "should be ')'")
		}
		return e
	default:
		p.errorf(diag.PointRanging(t.From), "should be an expression")
		return &StringLit{diag.PointRanging(t.From), "", DoubleQuoted}
	}
}

// callExpr parses the argument list of a call whose name token has just
// been consumed.
func (p *parser) callExpr(name Token) Expr {
	p.next()
	saved := p.stops
	p.stops = nil
	var args []Expr
	if !p.at(RParen) {
		args = append(args, p.expr())
		for p.at(Comma) {
			p.next()
			args = append(args, p.expr())
		}
	}
	p.stops = saved
	if p.at(RParen) {
		p.next()
	} else {
		p.errorf(diag.PointRanging(p.cur().From), "should be ')'")
	}
	return &CallExpr{diag.Ranging{From: name.From, To: p.prevTo()}, strings.ToUpper(name.Text), args}
}
