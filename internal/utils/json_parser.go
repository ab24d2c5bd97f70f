package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	codeFence     = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.+?)\\s*```")
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
	bareKey       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	controlChars  = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F]`)
)

// ErrNoJSON is returned when model output holds nothing that decodes as JSON
var ErrNoJSON = errors.New("no JSON object in model output")

// rewrites are tried in order; the first one yielding valid JSON wins
var rewrites = []func(string) string{
	func(s string) string { return s },
	fencedObject,
	firstObject,
	func(s string) string { return repair(firstObject(s)) },
	repair,
}

// DecodeModelJSON decodes the JSON object in a language-model reply into target.
// The reply may be bare JSON, fenced in markdown, wrapped in prose, or carry
// trailing commas, bare keys and single-quoted strings.
// target is only written by a candidate that is already valid JSON.
func DecodeModelJSON(reply string, target any) error {
	reply = strings.TrimSpace(strings.TrimPrefix(reply, "\ufeff"))
	if reply == "" {
		return fmt.Errorf("empty model output: %w", ErrNoJSON)
	}

	seen := make(map[string]bool, len(rewrites))
	var decodeErr error
	for _, rewrite := range rewrites {
		candidate := rewrite(reply)
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		if !json.Valid([]byte(candidate)) {
			continue
		}
		if decodeErr = json.Unmarshal([]byte(candidate), target); decodeErr == nil {
			return nil
		}
	}

	if decodeErr != nil {
		return fmt.Errorf("model output %q: %w", clip(reply, 100), decodeErr)
	}
	return fmt.Errorf("model output %q: %w", clip(reply, 100), ErrNoJSON)
}

// fencedObject returns the body of the first markdown code fence when it is an object
func fencedObject(s string) string {
	m := codeFence.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	body := strings.TrimSpace(m[1])
	if !strings.HasPrefix(body, "{") {
		return ""
	}
	return body
}

// firstObject returns the first brace-balanced object in s, ignoring braces inside strings
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"':
			quote = c
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

// repair rewrites the usual near-JSON mistakes models make
func repair(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	s = trailingComma.ReplaceAllString(s, "$1")
	s = bareKey.ReplaceAllString(s, `$1"$2"$3`)
	s = requote(s)
	return controlChars.ReplaceAllString(s, "")
}

// requote turns single-quoted strings into double-quoted ones.
// A quote only opens after a delimiter and only closes before one, so "it's" survives.
func requote(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble, inSingle := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			b.WriteByte(c)
			i++
			b.WriteByte(s[i])
			continue
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '"' && inSingle:
			b.WriteString(`\"`)
			continue
		case c == '\'' && !inDouble:
			opens := !inSingle && strings.IndexByte(":,[{", lastSignificant(s[:i])) >= 0
			closes := inSingle && strings.IndexByte(":,]}", firstSignificant(s[i+1:])) >= 0
			if opens || closes {
				inSingle = !inSingle
				b.WriteByte('"')
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func lastSignificant(s string) byte {
	s = strings.TrimRight(s, " \t\r\n")
	if s == "" {
		return '{'
	}
	return s[len(s)-1]
}

func firstSignificant(s string) byte {
	s = strings.TrimLeft(s, " \t\r\n")
	if s == "" {
		return '}'
	}
	return s[0]
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
