package strutil

import (
	"testing"

	"github.com/rexlang/rex/pkg/tt"
)

func TestChopLineEnding(t *testing.T) {
	tt.Test(t, tt.Fn("ChopLineEnding", ChopLineEnding), tt.Table{
		tt.Args("").Rets(""),
		tt.Args("text").Rets("text"),
		tt.Args("text\n").Rets("text"),
		tt.Args("text\r\n").Rets("text"),
		tt.Args("text\r").Rets("text\r"),
	})
}

func TestLines(t *testing.T) {
	tt.Test(t, tt.Fn("Lines", Lines), tt.Table{
		tt.Args("").Rets([]string{""}),
		tt.Args("a\nb").Rets([]string{"a", "b"}),
		tt.Args("a\r\nb\n").Rets([]string{"a", "b", ""}),
	})
}
