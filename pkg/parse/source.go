package parse

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
	// Whether the source code is from a file. If true, Name is the path to
	// the file.
	IsFile bool
}

// SourceForTest returns a Source used for testing.
func SourceForTest(code string) Source {
	return Source{Name: "[test]", Code: code}
}
