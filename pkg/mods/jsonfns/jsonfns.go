// Package jsonfns provides the json module: parsing JSON documents into
// stem variables, building JSON string literals, and querying documents
// with jq expressions.
package jsonfns

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/itchyny/gojq"

	"github.com/rexlang/rex/pkg/eval"
)

// Def is the json module, loadable with REQUIRE "registry:json".
var Def = eval.ModuleDef{
	ID: "rex/json",
	Functions: []eval.FuncSpec{
		{Name: "JSONPARSE", Params: []string{"text", "stem"},
			Descr: "parse a JSON document into stem variables; returns the number of variables set",
			Impl:  jsonParse},
		{Name: "JSONSTRINGIFY", Params: []string{"value"},
			Descr: "return the JSON string literal for a value",
			Impl:  jsonStringify},
		{Name: "JSONQUERY", Params: []string{"text", "query"},
			Descr: "run a jq query against a JSON document; results are returned one per line",
			Impl:  jsonQuery},
	},
}

// jsonParse decodes text and stores every leaf under the given stem.
// Object keys become upper-cased tail parts; an array stores its length
// under tail 0 and its elements under 1..length. Booleans read 1 and 0,
// null reads the empty string, and numbers keep their source form.
func jsonParse(fm *eval.Frame, text, stem string) (string, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("invalid JSON: %v", err)
	}
	if dec.More() {
		return "", fmt.Errorf("invalid JSON: trailing data after the document")
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

// tailPart folds a JSON object key into a usable stem tail part: upper
// case, with characters that would read as tail structure replaced by
// underscores.
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
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func jsonStringify(value string) string {
	b, _ := json.Marshal(value)
	return string(b)
}

// jsonQuery runs a jq query over the document. String results come back
// raw; everything else is re-encoded compactly.
func jsonQuery(text, query string) (string, error) {
	q, err := gojq.Parse(query)
	if err != nil {
		return "", fmt.Errorf("bad query: %v", err)
	}
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return "", fmt.Errorf("invalid JSON: %v", err)
	}
	var lines []string
	iter := q.Run(doc)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return "", fmt.Errorf("query failed: %v", err)
		}
		if s, ok := v.(string); ok {
			lines = append(lines, s)
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		lines = append(lines, string(b))
	}
	return strings.Join(lines, "\n"), nil
}
