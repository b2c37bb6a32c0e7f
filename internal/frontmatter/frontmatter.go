// Package frontmatter reads and edits the key: value block between two
// "---" delimiters at the top of a markdown document.
//
// Edits are line based so that keys the engine does not own keep their
// original formatting. Values are decoded with YAML rules.
package frontmatter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// keyPattern matches the start of a top-level "key: value" line.
var keyPattern = regexp.MustCompile(`^([A-Za-z0-9_][A-Za-z0-9_.\-]*)\s*:(\s|$)`)

type line struct {
	key  string // "" for continuation or comment lines
	text string
}

// Block is a parsed frontmatter block.
type Block struct {
	lines   []line
	present bool
}

// Split separates a document into its frontmatter block and body. A
// document without a well-formed block yields an empty Block and the whole
// content as body.
func Split(content string) (*Block, string) {
	if !strings.HasPrefix(content, delimiter) {
		return &Block{}, content
	}
	first, rest, ok := strings.Cut(content, "\n")
	if !ok || strings.TrimRight(first, " \r") != delimiter {
		return &Block{}, content
	}

	b := &Block{present: true}
	for {
		raw, remaining, more := strings.Cut(rest, "\n")
		if strings.TrimRight(raw, " \r") == delimiter {
			if !more {
				return b, ""
			}
			return b, remaining
		}
		if !more {
			// No closing delimiter: not frontmatter after all.
			return &Block{}, content
		}
		b.lines = append(b.lines, parseLine(raw))
		rest = remaining
	}
}

func parseLine(raw string) line {
	if m := keyPattern.FindStringSubmatch(raw); m != nil {
		return line{key: m[1], text: raw}
	}
	return line{text: raw}
}

// Present reports whether the document had (or now has) a block.
func (b *Block) Present() bool {
	return b.present || len(b.lines) > 0
}

// Keys returns the top-level keys in document order.
func (b *Block) Keys() []string {
	var keys []string
	for _, l := range b.lines {
		if l.key != "" {
			keys = append(keys, l.key)
		}
	}
	return keys
}

// Has reports whether key is set.
func (b *Block) Has(key string) bool {
	return b.index(key) >= 0
}

func (b *Block) index(key string) int {
	for i, l := range b.lines {
		if l.key == key {
			return i
		}
	}
	return -1
}

// span returns the index of key's line and the index one past its last
// continuation line.
func (b *Block) span(key string) (int, int) {
	start := b.index(key)
	if start < 0 {
		return -1, -1
	}
	end := start + 1
	for end < len(b.lines) && b.lines[end].key == "" && isContinuation(b.lines[end].text) {
		end++
	}
	return start, end
}

func isContinuation(text string) bool {
	return strings.HasPrefix(text, " ") || strings.HasPrefix(text, "\t") || strings.HasPrefix(text, "- ")
}

// Get decodes the value of key with YAML rules.
func (b *Block) Get(key string) (any, bool, error) {
	start, end := b.span(key)
	if start < 0 {
		return nil, false, nil
	}
	var snippet strings.Builder
	for _, l := range b.lines[start:end] {
		snippet.WriteString(l.text)
		snippet.WriteString("\n")
	}

	var m map[string]any
	if err := yaml.Unmarshal([]byte(snippet.String()), &m); err != nil {
		return nil, true, fmt.Errorf("decoding %s: %w", key, err)
	}
	return m[key], true, nil
}

// GetString returns the value of key as a string, or "" if absent or not scalar.
func (b *Block) GetString(key string) string {
	v, ok, err := b.Get(key)
	if !ok || err != nil || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case int, int64, float64, bool:
		return fmt.Sprint(t)
	}
	return ""
}

// GetBool returns the value of key as a bool. Strings "true"/"yes" count as true.
func (b *Block) GetBool(key string) bool {
	v, ok, err := b.Get(key)
	if !ok || err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes"
	}
	return false
}

// Set replaces key's value in place, or appends the key if absent.
func (b *Block) Set(key string, value any) {
	text := key + ": " + FormatValue(value)
	start, end := b.span(key)
	if start < 0 {
		b.lines = append(b.lines, line{key: key, text: text})
		return
	}
	replaced := append([]line{}, b.lines[:start]...)
	replaced = append(replaced, line{key: key, text: text})
	b.lines = append(replaced, b.lines[end:]...)
}

// Render returns the block including its delimiters, or "" for an empty
// block that was never present.
func (b *Block) Render() string {
	if !b.Present() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(delimiter + "\n")
	for _, l := range b.lines {
		sb.WriteString(l.text)
		sb.WriteString("\n")
	}
	sb.WriteString(delimiter + "\n")
	return sb.String()
}

// FormatValue renders a value the way hub and paper documents store it:
// strings quoted, numbers and booleans bare, lists as [ "a", "b" ].
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return `""`
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		if len(v) == 0 {
			return "[]"
		}
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[ " + strings.Join(quoted, ", ") + " ]"
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}
