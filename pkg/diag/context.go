package diag

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rexlang/rex/pkg/strutil"
)

// Context is a range of text within a named piece of source code. It is used
// for errors that point at part of a script, like parse errors and runtime
// condition tracebacks.
type Context struct {
	Name   string
	Source string
	Ranging

	saved *contextInfo
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{Name: name, Source: source, Ranging: r.Range()}
}

// Derived presentation data for a Context.
type contextInfo struct {
	head      string // text before the culprit on its first line
	culprit   string // Source[From:To], trailing newline stripped
	tail      string // text after the culprit on its last line
	beginLine int    // 1-based
	endLine   int    // 1-based
}

var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceholder = "^"
)

func (c *Context) info() *contextInfo {
	if c.saved != nil {
		return c.saved
	}
	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	head := before[strings.LastIndexByte(before, '\n')+1:]
	beginLine := strings.Count(before, "\n") + 1

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else if i := strings.IndexByte(after, '\n'); i >= 0 {
		tail = after[:i]
	} else {
		tail = after
	}
	endLine := beginLine + strings.Count(culprit, "\n")

	c.saved = &contextInfo{head, culprit, tail, beginLine, endLine}
	return c.saved
}

// StartLine returns the 1-based line number the context starts on.
func (c *Context) StartLine() int { return c.info().beginLine }

// StartColumn returns the 1-based column number the context starts on,
// counted in bytes from the start of the line.
func (c *Context) StartColumn() int { return len(c.info().head) + 1 }

// Show shows the context, starting with the name and line range on one line
// and the relevant source on the next.
func (c *Context) Show(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	return c.Name + ", " + c.lineRange() + "\n" + indent + "  " + c.relevantSource(indent+"  ")
}

// ShowCompact is like Show, with the description and the source on the same
// line.
func (c *Context) ShowCompact(indent string) string {
	if err := c.checkPosition(); err != nil {
		return err.Error()
	}
	desc := c.Name + ", " + c.lineRange() + " "
	// Following lines of a multi-line culprit line up with the first.
	descIndent := strings.Repeat(" ", runewidth.StringWidth(desc))
	return desc + c.relevantSource(indent+descIndent)
}

func (c *Context) checkPosition() error {
	if c.From == -1 {
		return fmt.Errorf("%s, unknown position", c.Name)
	} else if c.From < 0 || c.To > len(c.Source) || c.From > c.To {
		return fmt.Errorf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	return nil
}

func (c *Context) lineRange() string {
	info := c.info()
	if info.beginLine == info.endLine {
		return fmt.Sprintf("line %d:", info.beginLine)
	}
	return fmt.Sprintf("line %d-%d:", info.beginLine, info.endLine)
}

func (c *Context) relevantSource(indent string) string {
	info := c.info()
	var sb strings.Builder
	sb.WriteString(info.head)

	culprit := info.culprit
	if culprit == "" {
		culprit = culpritPlaceholder
	}
	for i, line := range strutil.Lines(culprit) {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart)
		sb.WriteString(line)
		sb.WriteString(culpritEnd)
	}

	sb.WriteString(info.tail)
	return sb.String()
}
