package eval

import (
	"sort"
	"strings"
)

// pool holds the variables of one call frame. Simple symbols live in cells
// so that PROCEDURE EXPOSE can alias a caller's variable by reference, and
// stems live in shared tables so that exposing a stem covers tails created
// later on either side.
type pool struct {
	simple map[string]*cell
	stems  map[string]*stemTab
}

// cell is the storage of one simple symbol. Dropping clears set instead of
// removing the cell, so that aliases created by EXPOSE observe the drop.
type cell struct {
	val string
	set bool
}

// stemTab is the storage of one stem: the default value assigned to the
// stem symbol itself, plus one entry per assigned tail.
type stemTab struct {
	def   cell
	tails map[string]string
}

func newPool() *pool {
	return &pool{
		simple: make(map[string]*cell),
		stems:  make(map[string]*stemTab),
	}
}

func (p *pool) cell(name string) *cell {
	c, ok := p.simple[name]
	if !ok {
		c = &cell{}
		p.simple[name] = c
	}
	return c
}

func (p *pool) stem(head string) *stemTab {
	s, ok := p.stems[head]
	if !ok {
		s = &stemTab{tails: make(map[string]string)}
		p.stems[head] = s
	}
	return s
}

func (p *pool) getSimple(name string) (string, bool) {
	if c, ok := p.simple[name]; ok && c.set {
		return c.val, true
	}
	return "", false
}

func (p *pool) setSimple(name, val string) {
	c := p.cell(name)
	c.val, c.set = val, true
}

func (p *pool) dropSimple(name string) {
	if c, ok := p.simple[name]; ok {
		c.val, c.set = "", false
	}
}

// getCompound looks up a tail in a stem, falling back to the stem's
// default value. The second return value reports whether either was set.
func (p *pool) getCompound(head, tail string) (string, bool) {
	s, ok := p.stems[head]
	if !ok {
		return "", false
	}
	if v, ok := s.tails[tail]; ok {
		return v, true
	}
	if s.def.set {
		return s.def.val, true
	}
	return "", false
}

func (p *pool) setCompound(head, tail, val string) {
	p.stem(head).tails[tail] = val
}

func (p *pool) dropCompound(head, tail string) {
	if s, ok := p.stems[head]; ok {
		delete(s.tails, tail)
	}
}

func (p *pool) getStemDefault(head string) (string, bool) {
	if s, ok := p.stems[head]; ok && s.def.set {
		return s.def.val, true
	}
	return "", false
}

func (p *pool) setStemDefault(head, val string) {
	s := p.stem(head)
	s.def.val, s.def.set = val, true
}

// dropStem clears the whole stem, default and tails alike. The table
// pointer is kept so that aliases made by EXPOSE stay connected.
func (p *pool) dropStem(head string) {
	if s, ok := p.stems[head]; ok {
		s.def = cell{}
		for k := range s.tails {
			delete(s.tails, k)
		}
	}
}

// expose aliases one name from another pool into p. A trailing dot names a
// whole stem. The alias is by reference: assignments and drops on either
// side are seen by both.
func (p *pool) expose(from *pool, name string) {
	if head, ok := stemName(name); ok {
		p.stems[head] = from.stem(head)
		return
	}
	p.simple[name] = from.cell(name)
}

// names returns the sorted names of all set variables, with compound
// variables in HEAD.tail form. Used by introspection and tests.
func (p *pool) names() []string {
	var out []string
	for name, c := range p.simple {
		if c.set {
			out = append(out, name)
		}
	}
	for head, s := range p.stems {
		if s.def.set {
			out = append(out, head)
		}
		for tail := range s.tails {
			out = append(out, head+tail)
		}
	}
	sort.Strings(out)
	return out
}

// stemName reports whether name refers to a whole stem ("X." form) and
// returns the head including the dot.
func stemName(name string) (string, bool) {
	if strings.HasSuffix(name, ".") && strings.Count(name, ".") == 1 {
		return name, true
	}
	return "", false
}

// splitCompound splits a compound symbol into its stem head (including the
// first dot) and the raw tail after it. It reports false for simple
// symbols and for plain stem references.
func splitCompound(name string) (head, tail string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 || i == len(name)-1 && strings.Count(name, ".") == 1 {
		return "", "", false
	}
	return name[:i+1], name[i+1:], true
}
