// Package casing normalizes snake_case API payloads into camelCase keys.
package casing

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"unicode"
)

type runeClass int

const (
	classSeparator runeClass = iota
	classUpper
	classLower
	classDigit
)

func classify(r rune) runeClass {
	switch {
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsLower(r), unicode.IsLetter(r):
		return classLower
	case unicode.IsDigit(r):
		return classDigit
	default:
		return classSeparator
	}
}

// Words splits s the way lodash's words does for identifiers: separators
// break words, digit runs stand alone, a lower-to-upper change starts a new
// word and the last capital of an acronym run starts the next word.
func Words(s string) []string {
	runes := []rune(strings.NewReplacer("'", "", "’", "").Replace(s))
	var (
		words   []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}

	for _, r := range runes {
		class := classify(r)
		if class == classSeparator {
			flush()
			continue
		}
		if len(current) == 0 {
			current = append(current, r)
			continue
		}
		prev := classify(current[len(current)-1])
		switch {
		case class == classDigit && prev != classDigit,
			class != classDigit && prev == classDigit:
			flush()
		case class == classUpper && prev == classLower:
			flush()
		case class == classLower && prev == classUpper && len(current) > 1:
			// "HTTPServer": the S belongs to the next word.
			last := current[len(current)-1]
			current = current[:len(current)-1]
			flush()
			current = append(current, last)
		}
		current = append(current, r)
	}
	flush()
	return words
}

// CamelCase converts s to lowerCamelCase.
func CamelCase(s string) string {
	words := Words(s)
	if len(words) == 0 {
		return ""
	}
	var b strings.Builder
	for i, word := range words {
		lower := strings.ToLower(word)
		if i == 0 {
			b.WriteString(lower)
			continue
		}
		b.WriteString(capitalize(lower))
	}
	return b.String()
}

func capitalize(s string) string {
	for i, r := range s {
		return string(unicode.ToUpper(r)) + s[i+len(string(r)):]
	}
	return s
}

// Keys returns a copy of v with every object key converted to camelCase at
// any depth. Array elements are transformed but their positions are kept.
// Scalars pass through unchanged.
func Keys(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		keys := make([]string, 0, len(typed))
		for k := range typed {
			keys = append(keys, k)
		}
		// colliding keys resolve deterministically: the last in sorted order wins
		sort.Strings(keys)
		for _, k := range keys {
			out[CamelCase(k)] = Keys(typed[k])
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, elem := range typed {
			out[i] = Keys(elem)
		}
		return out
	default:
		return v
	}
}

// Normalize decodes raw JSON, camelCases every key and re-encodes it.
// Numbers keep their original text.
func Normalize(raw []byte) ([]byte, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return raw, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil, err
	}
	return json.Marshal(Keys(decoded))
}
