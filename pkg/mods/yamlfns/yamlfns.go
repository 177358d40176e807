// Package yamlfns provides the yaml module: parsing YAML documents into
// stem variables, quoting scalars, and path lookups.
package yamlfns

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rexlang/rex/pkg/eval"
)

// Def is the yaml module, loadable with REQUIRE "registry:yaml".
var Def = eval.ModuleDef{
	ID: "rex/yaml",
	Functions: []eval.FuncSpec{
		{Name: "YAMLPARSE", Params: []string{"text", "stem"},
			Descr: "parse a YAML document into stem variables; returns the number of variables set",
			Impl:  yamlParse},
		{Name: "YAMLSTRINGIFY", Params: []string{"value"},
			Descr: "return the value quoted as a YAML scalar",
			Impl:  yamlStringify},
		{Name: "YAMLGET", Params: []string{"text", "path"},
			Descr: "look up a dotted path in a YAML document; list indices are 1-based",
			Impl:  yamlGet},
	},
}

// yamlParse decodes text and stores every leaf under the given stem,
// with the same shape jsonParse uses: upper-cased keys as tail parts,
// lists with their length under tail 0 and elements under 1..length.
func yamlParse(fm *eval.Frame, text, stem string) (string, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return "", fmt.Errorf("invalid YAML: %v", err)
	}
	stem = strings.TrimSuffix(stem, ".")
	if stem == "" {
		return "", fmt.Errorf("empty stem name")
	}
	n := fill(fm, stem, doc)
	return strconv.Itoa(n), nil
}

func fill(fm *eval.Frame, name string, doc any) int {
	switch doc := doc.(type) {
	case map[string]any:
		n := 0
		for key, val := range doc {
			n += fill(fm, name+"."+tailPart(key), val)
		}
		return n
	case []any:
		fm.SetVar(name+".0", strconv.Itoa(len(doc)))
		n := 1
		for i, val := range doc {
			n += fill(fm, name+"."+strconv.Itoa(i+1), val)
		}
		return n
	default:
		fm.SetVar(name, scalar(doc))
		return 1
	}
}

func tailPart(key string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(key) {
		if r == '.' || r == ' ' || r == '\t' || r == '\n' {
			sb.WriteByte('_')
		} else {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

func scalar(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "1"
		}
		return "0"
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func yamlStringify(value string) (string, error) {
	b, err := yaml.Marshal(value)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\n"), nil
}

// yamlGet navigates the document along the dotted path. Map keys match
// exactly and then lower-cased; list parts must be 1-based indices. A
// non-scalar result is re-encoded as YAML.
func yamlGet(text, path string) (string, error) {
	var doc any
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return "", fmt.Errorf("invalid YAML: %v", err)
	}
	node := doc
	for _, part := range strings.Split(path, ".") {
		switch cur := node.(type) {
		case map[string]any:
			v, ok := cur[part]
			if !ok {
				v, ok = cur[strings.ToLower(part)]
			}
			if !ok {
				return "", fmt.Errorf("no value at path %s", path)
			}
			node = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 1 || i > len(cur) {
				return "", fmt.Errorf("no value at path %s", path)
			}
			node = cur[i-1]
		default:
			return "", fmt.Errorf("no value at path %s", path)
		}
	}
	switch node.(type) {
	case map[string]any, []any:
		b, err := yaml.Marshal(node)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(b), "\n"), nil
	default:
		return scalar(node), nil
	}
}
