// Package frontmatter reads the restricted YAML subset allowed in note
// front matter.
//
// The supported grammar is intentionally minimal so that vault scans stay
// deterministic and never depend on a full YAML implementation:
//
//	---
//	title: weekly plan
//	pinned: true
//	tags:
//	  - home
//	  - errands
//	aliases: [plan, weekly]
//	meta:
//	  author: alice
//	  revision: 2
//	---
//
// Scalar values may be unquoted strings, integers, or booleans (true/false).
// Lists contain only strings. Objects (nested maps) contain only scalar
// values. Quoted strings using single or double quotes are supported for
// values containing special characters.
//
// Features explicitly not supported: multi-line strings, anchors, aliases,
// tags, flow mappings, null values, floats, and nested lists/objects.
//
// A note without an opening fence simply has no front matter: Parse returns
// a nil Block and the whole input as body.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ScalarKind distinguishes scalar YAML values inside note front matter.
type ScalarKind uint8

// ScalarKind values enumerate the YAML scalar subset we accept.
const (
	ScalarString ScalarKind = iota
	ScalarInt
	ScalarBool
)

// Scalar keeps the restricted YAML scalar types explicit for downstream
// validation.
type Scalar struct {
	Kind   ScalarKind // Kind describes which scalar value is populated.
	String string     // String holds the scalar string value when Kind == ScalarString.
	Int    int64      // Int holds the scalar integer value when Kind == ScalarInt.
	Bool   bool       // Bool holds the scalar boolean value when Kind == ScalarBool.
}

// ValueKind describes the supported front matter shapes.
type ValueKind uint8

// ValueKind values enumerate the supported top-level YAML shapes.
const (
	ValueScalar ValueKind = iota
	ValueList
	ValueObject
)

// Value represents a validated front matter value in the supported YAML
// subset.
type Value struct {
	Kind   ValueKind         // Kind describes which Value shape is populated.
	Scalar Scalar            // Scalar holds the value when Kind == ValueScalar.
	List   []string          // List holds the value when Kind == ValueList.
	Object map[string]Scalar // Object holds the value when Kind == ValueObject.
}

// Block maps top-level front matter keys to validated values.
type Block map[string]Value

// GetString returns the string value for key.
// Returns ("", false) if key is missing or not a string scalar.
func (b Block) GetString(key string) (string, bool) {
	v, ok := b[key]
	if !ok || v.Kind != ValueScalar || v.Scalar.Kind != ScalarString {
		return "", false
	}

	return v.Scalar.String, true
}

// GetInt returns the int64 value for key.
// Returns (0, false) if key is missing or not an int scalar.
func (b Block) GetInt(key string) (int64, bool) {
	v, ok := b[key]
	if !ok || v.Kind != ValueScalar || v.Scalar.Kind != ScalarInt {
		return 0, false
	}

	return v.Scalar.Int, true
}

// GetBool returns the bool value for key.
// Returns (false, false) if key is missing or not a bool scalar.
func (b Block) GetBool(key string) (bool, bool) {
	v, ok := b[key]
	if !ok || v.Kind != ValueScalar || v.Scalar.Kind != ScalarBool {
		return false, false
	}

	return v.Scalar.Bool, true
}

// GetList returns the string slice for key.
// Returns (nil, false) if key is missing or not a list.
func (b Block) GetList(key string) ([]string, bool) {
	v, ok := b[key]
	if !ok || v.Kind != ValueList {
		return nil, false
	}

	return v.List, true
}

// GetObject returns the scalar map for key.
// Returns (nil, false) if key is missing or not an object.
func (b Block) GetObject(key string) (map[string]Scalar, bool) {
	v, ok := b[key]
	if !ok || v.Kind != ValueObject {
		return nil, false
	}

	return v.Object, true
}

const (
	fence            = "---"
	defaultLineLimit = 200 // Default line cap; override with WithLineLimit.
)

var (
	fenceBytes = []byte(fence)
	trueBytes  = []byte("true")
	falseBytes = []byte("false")
)

// Options configures front matter parsing behavior.
type Options struct {
	// LineLimit is the maximum number of front matter lines allowed. A value
	// of 0 disables the line limit.
	LineLimit int
}

// Option mutates Options.
type Option func(*Options)

// WithLineLimit sets the maximum number of front matter lines. Use 0 to
// disable the limit entirely.
func WithLineLimit(limit int) Option {
	return func(opts *Options) {
		if limit < 0 {
			limit = 0
		}

		opts.LineLimit = limit
	}
}

// Parse reads the front matter block at the start of src, returning the
// parsed keys and the body bytes that follow the closing fence without extra
// copies. Input that does not open with a fence has no front matter: Parse
// returns a nil Block and src unchanged. An empty block ("---\n---\n") is
// valid and returns an empty map. An opened block must be closed; a missing
// closing fence is an error.
//
// Example:
//
//	src := []byte("---\ntitle: weekly plan\n---\n# Monday\n")
//	block, body, err := frontmatter.Parse(src)
//	if err != nil {
//		return err
//	}
//	_ = block["title"]
//	_ = body // "# Monday\n"
func Parse(src []byte, opts ...Option) (Block, []byte, error) {
	options := Options{LineLimit: defaultLineLimit}

	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	lines := newLineScanner(src)

	first, ok := lines.next()
	if !ok || !bytes.Equal(first.data, fenceBytes) {
		return nil, src, nil
	}

	parser := &blockParser{lines: lines, lineLimit: options.LineLimit}

	block, closed, err := parser.parse()
	if err != nil {
		return nil, nil, err
	}

	if !closed {
		return nil, nil, errors.New("parse frontmatter: missing closing fence")
	}

	if lines.pending != nil {
		return nil, nil, errors.New("parse frontmatter: internal parse state")
	}

	return block, lines.remainder(), nil
}

type lineToken struct {
	data []byte
	num  int
}

type blockParser struct {
	lines     *lineScanner
	linesSeen int
	lineLimit int
}

func (p *blockParser) parse() (Block, bool, error) {
	out := make(Block)

	for {
		tok, ok := p.lines.next()
		if !ok {
			return out, false, nil
		}

		if bytes.Equal(tok.data, fenceBytes) {
			return out, true, nil
		}

		err := p.countLine()
		if err != nil {
			return nil, false, err
		}

		if len(bytes.TrimSpace(tok.data)) == 0 {
			continue
		}

		if tok.data[0] == ' ' || tok.data[0] == '\t' {
			return nil, false, lineErr(tok.num, "unexpected indentation")
		}

		keyRaw, restRaw, ok := bytes.Cut(tok.data, []byte{':'})
		if !ok {
			return nil, false, lineErr(tok.num, "missing ':'")
		}

		keyBytes := bytes.TrimSpace(keyRaw)
		if len(keyBytes) == 0 {
			return nil, false, lineErr(tok.num, "empty key")
		}

		if bytes.ContainsAny(keyBytes, " \t") {
			return nil, false, lineErr(tok.num, "whitespace in key")
		}

		key := string(keyBytes)

		if _, exists := out[key]; exists {
			return nil, false, lineErr(tok.num, "duplicate key")
		}

		inline := bytes.TrimSpace(restRaw)
		if len(inline) != 0 {
			var value Value

			value, err = parseInlineValue(inline)
			if err != nil {
				return nil, false, lineErr(tok.num, err.Error())
			}

			out[key] = value

			continue
		}

		// Bare key: an indented block list or block object must follow.
		blockLine, ok, err := p.nextContent()
		if err != nil {
			return nil, false, err
		}

		if !ok {
			return nil, false, lineErr(tok.num, "missing block value")
		}

		indent, hasTab := countIndent(blockLine.data)
		if hasTab || indent == 0 {
			return nil, false, lineErr(blockLine.num, "expected indented block")
		}

		body := blockLine.data[indent:]
		if len(body) >= 2 && body[0] == '-' && body[1] == ' ' {
			var list []string

			list, err = p.parseBlockList(blockLine, indent)
			if err != nil {
				return nil, false, err
			}

			out[key] = Value{Kind: ValueList, List: list}

			continue
		}

		var obj map[string]Scalar

		obj, err = p.parseBlockObject(blockLine, indent)
		if err != nil {
			return nil, false, err
		}

		out[key] = Value{Kind: ValueObject, Object: obj}
	}
}

// nextContent returns the next non-blank line inside the front matter block.
// It stops (without consuming) at the closing fence.
func (p *blockParser) nextContent() (lineToken, bool, error) {
	for {
		tok, ok := p.lines.next()
		if !ok {
			return lineToken{}, false, nil
		}

		if bytes.Equal(tok.data, fenceBytes) {
			p.lines.unread(tok)

			return lineToken{}, false, nil
		}

		err := p.countLine()
		if err != nil {
			return lineToken{}, false, err
		}

		if len(bytes.TrimSpace(tok.data)) == 0 {
			continue
		}

		return tok, true, nil
	}
}

// nextSibling returns the next line belonging to an indented block at the
// given indent. It skips blank lines and stops (without consuming) at the
// closing fence or at any line indented less than the block.
func (p *blockParser) nextSibling(indent int) (lineToken, bool, error) {
	for {
		tok, ok := p.lines.next()
		if !ok {
			return lineToken{}, false, nil
		}

		if bytes.Equal(tok.data, fenceBytes) {
			p.lines.unread(tok)

			return lineToken{}, false, nil
		}

		if len(bytes.TrimSpace(tok.data)) == 0 {
			err := p.countLine()
			if err != nil {
				return lineToken{}, false, err
			}

			continue
		}

		lineIndent, hasTab := countIndent(tok.data)
		if hasTab {
			return lineToken{}, false, lineErr(tok.num, "tabs are not allowed")
		}

		if lineIndent < indent {
			p.lines.unread(tok)

			return lineToken{}, false, nil
		}

		if lineIndent != indent {
			return lineToken{}, false, lineErr(tok.num, "inconsistent indentation")
		}

		err := p.countLine()
		if err != nil {
			return lineToken{}, false, err
		}

		return tok, true, nil
	}
}

func (p *blockParser) parseBlockList(first lineToken, indent int) ([]string, error) {
	items := []string{}
	current := first

	for {
		item, err := parseListItem(current, indent)
		if err != nil {
			return nil, err
		}

		items = append(items, item)

		next, ok, err := p.nextSibling(indent)
		if err != nil {
			return nil, err
		}

		if !ok {
			return items, nil
		}

		current = next
	}
}

func (p *blockParser) parseBlockObject(first lineToken, indent int) (map[string]Scalar, error) {
	obj := make(map[string]Scalar)
	current := first

	for {
		key, scalar, err := parseObjectEntry(current, indent)
		if err != nil {
			return nil, err
		}

		if _, exists := obj[key]; exists {
			return nil, lineErr(current.num, "duplicate object key")
		}

		obj[key] = scalar

		next, ok, err := p.nextSibling(indent)
		if err != nil {
			return nil, err
		}

		if !ok {
			return obj, nil
		}

		current = next
	}
}

func (p *blockParser) countLine() error {
	p.linesSeen++
	if p.lineLimit == 0 {
		return nil
	}

	if p.linesSeen > p.lineLimit {
		return errors.New("parse frontmatter: exceeds maximum line limit")
	}

	return nil
}

func parseInlineValue(value []byte) (Value, error) {
	if value[0] == '[' {
		if value[len(value)-1] != ']' {
			return Value{}, errors.New("unterminated list")
		}

		list, err := parseInlineList(value)
		if err != nil {
			return Value{}, err
		}

		return Value{Kind: ValueList, List: list}, nil
	}

	scalar, err := parseScalar(value)
	if err != nil {
		return Value{}, err
	}

	return Value{Kind: ValueScalar, Scalar: scalar}, nil
}

func parseInlineList(value []byte) ([]string, error) {
	inner := bytes.TrimSpace(value[1 : len(value)-1])
	if len(inner) == 0 {
		return []string{}, nil
	}

	parts := bytes.Split(inner, []byte{','})

	items := make([]string, 0, len(parts))

	for _, part := range parts {
		item := bytes.TrimSpace(part)
		if len(item) == 0 {
			return nil, errors.New("empty list item")
		}

		parsed, err := parseString(item)
		if err != nil {
			return nil, err
		}

		items = append(items, parsed)
	}

	return items, nil
}

func parseListItem(tok lineToken, indent int) (string, error) {
	lineIndent, hasTab := countIndent(tok.data)
	if hasTab {
		return "", lineErr(tok.num, "tabs are not allowed")
	}

	if lineIndent != indent {
		return "", lineErr(tok.num, "inconsistent indentation")
	}

	rest := tok.data[indent:]
	if len(rest) < 2 || rest[0] != '-' || rest[1] != ' ' {
		return "", lineErr(tok.num, "expected list item")
	}

	item := bytes.TrimSpace(rest[2:])
	if len(item) == 0 {
		return "", lineErr(tok.num, "empty list item")
	}

	parsed, err := parseString(item)
	if err != nil {
		return "", lineErr(tok.num, err.Error())
	}

	return parsed, nil
}

func parseObjectEntry(tok lineToken, indent int) (string, Scalar, error) {
	lineIndent, hasTab := countIndent(tok.data)
	if hasTab {
		return "", Scalar{}, lineErr(tok.num, "tabs are not allowed")
	}

	if lineIndent != indent {
		return "", Scalar{}, lineErr(tok.num, "inconsistent indentation")
	}

	keyRaw, restRaw, ok := bytes.Cut(tok.data[indent:], []byte{':'})
	if !ok {
		return "", Scalar{}, lineErr(tok.num, "missing ':' in object entry")
	}

	keyBytes := bytes.TrimSpace(keyRaw)
	if len(keyBytes) == 0 {
		return "", Scalar{}, lineErr(tok.num, "empty object key")
	}

	if bytes.ContainsAny(keyBytes, " \t") {
		return "", Scalar{}, lineErr(tok.num, "whitespace in object key")
	}

	value := bytes.TrimSpace(restRaw)
	if len(value) == 0 {
		return "", Scalar{}, lineErr(tok.num, "empty object value")
	}

	scalar, err := parseScalar(value)
	if err != nil {
		return "", Scalar{}, lineErr(tok.num, err.Error())
	}

	return string(keyBytes), scalar, nil
}

func parseScalar(value []byte) (Scalar, error) {
	if len(value) == 0 {
		return Scalar{}, errors.New("empty scalar")
	}

	if valueHasUnsupportedPrefix(value) {
		return Scalar{}, errors.New("unsupported value")
	}

	if bytes.Equal(value, trueBytes) || bytes.Equal(value, falseBytes) {
		return Scalar{Kind: ScalarBool, Bool: value[0] == 't'}, nil
	}

	if parsed, ok := parseInt(value); ok {
		return Scalar{Kind: ScalarInt, Int: parsed}, nil
	}

	parsed, err := parseString(value)
	if err != nil {
		return Scalar{}, err
	}

	return Scalar{Kind: ScalarString, String: parsed}, nil
}

func valueHasUnsupportedPrefix(value []byte) bool {
	if len(value) == 0 {
		return false
	}

	switch value[0] {
	case '[', '{', '}', ']', '|', '>', '&', '*', '!', '%', '@', '`':
		return true
	}

	return len(value) >= 2 && value[0] == '-' && value[1] == ' '
}

func parseInt(value []byte) (int64, bool) {
	if len(value) == 0 {
		return 0, false
	}

	neg := false
	idx := 0

	if value[0] == '-' {
		neg = true

		idx++
		if idx == len(value) {
			return 0, false
		}
	}

	var n int64

	for ; idx < len(value); idx++ {
		r := value[idx]
		if r < '0' || r > '9' {
			return 0, false
		}

		digit := int64(r - '0')
		if n > (math.MaxInt64-digit)/10 {
			return 0, false
		}

		n = n*10 + digit
	}

	if neg {
		n = -n
	}

	return n, true
}

func parseString(value []byte) (string, error) {
	if len(value) > 0 && value[0] == '"' {
		if len(value) < 2 || value[len(value)-1] != '"' {
			return "", errors.New("unterminated quoted string")
		}

		parsed, err := strconv.Unquote(string(value))
		if err != nil {
			return "", errors.New("invalid quoted string")
		}

		return parsed, nil
	}

	if len(value) > 0 && value[0] == '\'' {
		if len(value) < 2 || value[len(value)-1] != '\'' {
			return "", errors.New("unterminated quoted string")
		}

		return string(value[1 : len(value)-1]), nil
	}

	return string(value), nil
}

func countIndent(line []byte) (int, bool) {
	count := 0

	for _, r := range line {
		if r == ' ' {
			count++

			continue
		}

		if r == '\t' {
			return 0, true
		}

		break
	}

	return count, false
}

type parseError struct {
	line int
	msg  string
}

func (e *parseError) Error() string {
	return fmt.Sprintf("parse frontmatter line %d: %s", e.line, e.msg)
}

func lineErr(line int, msg string) error {
	return &parseError{line: line, msg: msg}
}

type lineScanner struct {
	data    []byte
	idx     int
	lineNum int
	pending *lineToken
}

func newLineScanner(data []byte) *lineScanner {
	return &lineScanner{data: data}
}

func (s *lineScanner) next() (lineToken, bool) {
	if s.pending != nil {
		out := *s.pending
		s.pending = nil

		return out, true
	}

	if s.idx >= len(s.data) {
		return lineToken{}, false
	}

	start := s.idx
	for s.idx < len(s.data) && s.data[s.idx] != '\n' {
		s.idx++
	}

	end := s.idx
	if s.idx < len(s.data) {
		s.idx++
	}

	s.lineNum++

	line := s.data[start:end]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	return lineToken{data: line, num: s.lineNum}, true
}

func (s *lineScanner) unread(tok lineToken) {
	s.pending = &tok
}

func (s *lineScanner) remainder() []byte {
	if s.idx >= len(s.data) {
		return nil
	}

	return s.data[s.idx:]
}
