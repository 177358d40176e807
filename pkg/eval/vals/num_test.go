package vals

import (
	"testing"

	"github.com/rexlang/rex/pkg/tt"
)

func TestIsNum(t *testing.T) {
	tt.Test(t, tt.Fn("IsNum", IsNum), tt.Table{
		tt.Args("0").Rets(true),
		tt.Args("42").Rets(true),
		tt.Args("-1.5").Rets(true),
		tt.Args("+.5").Rets(true),
		tt.Args("12.").Rets(true),
		tt.Args("1E3").Rets(true),
		tt.Args("1.2e-3").Rets(true),
		tt.Args(" 7 ").Rets(true),
		tt.Args("- 7").Rets(true),

		tt.Args("").Rets(false),
		tt.Args("abc").Rets(false),
		tt.Args("1 2").Rets(false),
		tt.Args("1.2.3").Rets(false),
		tt.Args("1E").Rets(false),
		tt.Args(".").Rets(false),
		tt.Args("1E9999999").Rets(false),
	})
}

func TestFormat_Plain(t *testing.T) {
	format := func(s string) string {
		n, _ := ParseNum(s)
		return Format(n, DefaultDigits)
	}
	tt.Test(t, tt.Fn("format", format), tt.Table{
		tt.Args("0").Rets("0"),
		tt.Args("007").Rets("7"),
		tt.Args("1.50").Rets("1.50"),
		tt.Args("-0").Rets("0"),
		tt.Args("2E3").Rets("2000"),
		tt.Args("0.000001").Rets("0.000001"),
		tt.Args("1E-7").Rets("1E-7"),
		tt.Args("1E+9").Rets("1E+9"),
		tt.Args("12.3E+9").Rets("1.23E+10"),
		tt.Args(".5").Rets("0.5"),
	})
}
