package eval

import (
	"strings"

	"github.com/rexlang/rex/pkg/parse"
)

func (fm *Frame) execParse(st *parse.ParseStmt) error {
	var src string
	switch {
	case st.Arg:
		src = strings.Join(fm.args, " ")
	case st.Var != nil:
		v, err := fm.readVar(st.Var)
		if err != nil {
			return err
		}
		src = v
	default:
		if st.Value != nil {
			v, err := fm.evalExpr(st.Value)
			if err != nil {
				return err
			}
			src = v
		}
	}
	if st.Upper {
		src = strings.ToUpper(src)
	}
	fm.applyTemplate(st.Template, src)
	return nil
}

// applyTemplate splits src by the template's string patterns and assigns
// each segment's words to the targets before the next pattern.
func (fm *Frame) applyTemplate(parts []parse.TemplatePart, src string) {
	pos := 0
	i := 0
	for i < len(parts) {
		j := i
		for j < len(parts) && parts[j].Kind != parse.TmplPattern {
			j++
		}
		segEnd, nextPos := len(src), len(src)
		if j < len(parts) {
			if k := strings.Index(src[pos:], parts[j].Pattern); k >= 0 {
				segEnd = pos + k
				nextPos = segEnd + len(parts[j].Pattern)
			}
		}
		fm.assignWords(parts[i:j], src[pos:segEnd])
		pos = nextPos
		i = j + 1
	}
}

// assignWords distributes one segment over its targets: each target takes
// the next blank-delimited word, except the last, which takes the rest of
// the segment verbatim after the single delimiting blank. Dot targets
// consume their word without assigning it.
func (fm *Frame) assignWords(targets []parse.TemplatePart, seg string) {
	pos := 0
	for idx, t := range targets {
		var val string
		if idx == len(targets)-1 {
			rest := seg[pos:]
			if idx > 0 && strings.HasPrefix(rest, " ") {
				rest = rest[1:]
			}
			val = rest
		} else {
			for pos < len(seg) && seg[pos] == ' ' {
				pos++
			}
			start := pos
			for pos < len(seg) && seg[pos] != ' ' {
				pos++
			}
			val = seg[start:pos]
		}
		if t.Kind == parse.TmplSymbol {
			fm.setVar(t.Name, val)
		}
	}
}
