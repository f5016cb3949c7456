package builtin

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"

	"github.com/mqlang/mq/internal/mqerr"
	"github.com/mqlang/mq/internal/value"
)

func str(v value.Value) (string, bool) {
	if v.Kind() != value.KindString {
		return "", false
	}
	return v.Str(), true
}

func Upcase(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.String(strings.ToUpper(s)), nil
}

func Downcase(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.String(strings.ToLower(s)), nil
}

func Split(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	sep, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	parts := strings.Split(s, sep)
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.String(p)
	}
	return value.ArrayNoCopy(out), nil
}

func Join(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindArray {
		return value.None, typeErr("an array and a string", args...)
	}
	sep, ok := str(args[1])
	if !ok {
		return value.None, typeErr("an array and a string", args...)
	}
	parts := make([]string, len(args[0].Array()))
	for i, v := range args[0].Array() {
		parts[i] = value.ToString(v)
	}
	return value.String(strings.Join(parts, sep)), nil
}

func Trim(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.String(strings.TrimSpace(s)), nil
}

func Ltrimstr(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	prefix, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.String(strings.TrimPrefix(s, prefix)), nil
}

func Rtrimstr(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	suffix, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.String(strings.TrimSuffix(s, suffix)), nil
}

func StartsWith(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	prefix, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.Bool(strings.HasPrefix(s, prefix)), nil
}

func EndsWith(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	suffix, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.Bool(strings.HasSuffix(s, suffix)), nil
}

func Contains(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	sub, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.Bool(strings.Contains(s, sub)), nil
}

// Index returns the byte offset of the first match, or -1 (spec §4.5:
// "indexing is byte-based on UTF-8").
func Index(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	sub, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.Int(strings.Index(s, sub)), nil
}

func Rindex(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	sub, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	return value.Int(strings.LastIndex(s, sub)), nil
}

// Slice supports both strings and arrays, clamping out-of-range bounds
// rather than raising, matching the rest of the selector surface's
// "out of range yields empty, not an error" convention.
func Slice(args []value.Value) (value.Value, error) {
	if args[1].Kind() != value.KindNumber || args[2].Kind() != value.KindNumber {
		return value.None, typeErr("a string or array and two numbers", args...)
	}
	start := int(args[1].Number())
	end := int(args[2].Number())
	switch args[0].Kind() {
	case value.KindString:
		s := args[0].Str()
		start, end = clampRange(start, end, len(s))
		return value.String(s[start:end]), nil
	case value.KindArray:
		arr := args[0].Array()
		start, end = clampRange(start, end, len(arr))
		return value.Array(arr[start:end]), nil
	default:
		return value.None, typeErr("a string or array", args[0])
	}
}

func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if end < 0 {
		end = 0
	}
	if start > end {
		start = end
	}
	return start, end
}

func Replace(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	old, ok2 := str(args[1])
	repl, ok3 := str(args[2])
	if !ok1 || !ok2 || !ok3 {
		return value.None, typeErr("three strings", args...)
	}
	return value.String(strings.ReplaceAll(s, old, repl)), nil
}

func Gsub(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	pattern, ok2 := str(args[1])
	repl, ok3 := str(args[2])
	if !ok1 || !ok2 || !ok3 {
		return value.None, typeErr("three strings", args...)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return value.None, mqerr.New(mqerr.KindRegex, mqerr.Span{}, "gsub: %s", err)
	}
	return value.String(re.ReplaceAllString(s, repl)), nil
}

// RegexMatch reports whether the pattern matches anywhere in s (spec
// §4.5: "anchored by default unless .* added"); the regex flavor is Go's
// RE2-based stdlib `regexp`, published here since spec.md §9 declines to
// prescribe one.
func RegexMatch(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	pattern, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return value.None, mqerr.New(mqerr.KindRegex, mqerr.Span{}, "regex_match: %s", err)
	}
	return value.Bool(re.MatchString(s)), nil
}

// Capture returns the first match's capture groups as an array of
// strings (empty array if no match).
func Capture(args []value.Value) (value.Value, error) {
	s, ok1 := str(args[0])
	pattern, ok2 := str(args[1])
	if !ok1 || !ok2 {
		return value.None, typeErr("two strings", args...)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return value.None, mqerr.New(mqerr.KindRegex, mqerr.Span{}, "capture: %s", err)
	}
	m := re.FindStringSubmatch(s)
	if m == nil {
		return value.ArrayNoCopy(nil), nil
	}
	out := make([]value.Value, len(m)-1)
	for i, g := range m[1:] {
		out[i] = value.String(g)
	}
	return value.ArrayNoCopy(out), nil
}

func Repeat(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string and a number", args...)
	}
	n, ok := num(args[1])
	if !ok || n < 0 {
		return value.None, typeErr("a string and a number", args...)
	}
	return value.String(strings.Repeat(s, int(n))), nil
}

// Explode splits s into an array of single-rune strings (code-point
// aware, per spec §4.5).
func Explode(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	runes := []rune(s)
	out := make([]value.Value, len(runes))
	for i, r := range runes {
		out[i] = value.String(string(r))
	}
	return value.ArrayNoCopy(out), nil
}

func Implode(args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindArray {
		return value.None, typeErr("an array of strings", args...)
	}
	var sb strings.Builder
	for _, v := range args[0].Array() {
		sb.WriteString(value.ToString(v))
	}
	return value.String(sb.String()), nil
}

func URLEncode(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.String(url.QueryEscape(s)), nil
}

func Base64Encode(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	return value.String(base64.StdEncoding.EncodeToString([]byte(s))), nil
}

func Base64Decode(args []value.Value) (value.Value, error) {
	s, ok := str(args[0])
	if !ok {
		return value.None, typeErr("a string", args...)
	}
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return value.None, mqerr.New(mqerr.KindType, mqerr.Span{}, "base64d: %s", err)
	}
	return value.String(string(b)), nil
}
