// Package jsondoc parses small JSON payloads into a document with a fixed
// memory budget. A payload that does not fit the budget is rejected with
// ErrNoMemory instead of being truncated or grown. Strings must be valid
// UTF-8; a value holding other bytes is rejected with ErrInvalidInput.
package jsondoc

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultCapacity is the budget used by the update client
	DefaultCapacity = 1024

	// MaxNesting is the deepest array/object nesting accepted
	MaxNesting = 10

	// every value occupies one slot; strings additionally store their bytes plus a terminator
	slotSize = 16
)

var (
	ErrEmptyInput      = errors.New("EmptyInput")
	ErrIncompleteInput = errors.New("IncompleteInput")
	ErrInvalidInput    = errors.New("InvalidInput")
	ErrNoMemory        = errors.New("NoMemory")
	ErrTooDeep         = errors.New("TooDeep")
)

// Kind is the JSON type of a value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

type node struct {
	kind  Kind
	text  string
	flag  bool
	keys  []string
	items []*node
}

// Document is a parsed payload
type Document struct {
	root *node
	used int
}

// Root returns the top-level value
func (d *Document) Root() Value {
	return Value{node: d.root}
}

// MemoryUsage returns how much of the capacity the document occupies
func (d *Document) MemoryUsage() int {
	return d.used
}

// Parse reads the first JSON value from text into a document that must fit
// into capacity bytes. Bytes after the first complete value are ignored.
func Parse(text string, capacity int) (*Document, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	p := &parser{dec: dec, capacity: capacity}
	root, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}

	// the decoder replaces invalid UTF-8 with U+FFFD, so check the consumed bytes
	if !utf8.ValidString(text[:dec.InputOffset()]) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrInvalidInput)
	}

	return &Document{root: root, used: p.used}, nil
}

type parser struct {
	dec      *json.Decoder
	capacity int
	used     int
	started  bool
}

func (p *parser) alloc(size int) error {
	if p.used+size > p.capacity {
		return ErrNoMemory
	}
	p.used += size
	return nil
}

func (p *parser) next() (json.Token, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return nil, p.translate(err)
	}
	p.started = true
	return tok, nil
}

func (p *parser) translate(err error) error {
	if errors.Is(err, io.EOF) {
		if p.started {
			return ErrIncompleteInput
		}
		return ErrEmptyInput
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrIncompleteInput
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}

func (p *parser) parseValue(depth int) (*node, error) {
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if err := p.alloc(slotSize); err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return p.parseObject(depth + 1)
		case '[':
			return p.parseArray(depth + 1)
		default:
			return nil, fmt.Errorf("%w: unexpected %q", ErrInvalidInput, rune(v))
		}
	case string:
		if err := p.alloc(len(v) + 1); err != nil {
			return nil, err
		}
		return &node{kind: KindString, text: v}, nil
	case json.Number:
		return &node{kind: KindNumber, text: v.String()}, nil
	case bool:
		return &node{kind: KindBool, flag: v}, nil
	case nil:
		return &node{kind: KindNull}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected token %v", ErrInvalidInput, tok)
	}
}

func (p *parser) parseObject(depth int) (*node, error) {
	if depth > MaxNesting {
		return nil, ErrTooDeep
	}

	obj := &node{kind: KindObject}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		if delim, ok := tok.(json.Delim); ok && delim == '}' {
			return obj, nil
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is not a string", ErrInvalidInput)
		}
		if err := p.alloc(len(key) + 1); err != nil {
			return nil, err
		}

		child, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		obj.keys = append(obj.keys, key)
		obj.items = append(obj.items, child)
	}
}

func (p *parser) parseArray(depth int) (*node, error) {
	if depth > MaxNesting {
		return nil, ErrTooDeep
	}

	arr := &node{kind: KindArray}
	for p.dec.More() {
		child, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, child)
	}

	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != ']' {
		return nil, fmt.Errorf("%w: expected end of array", ErrInvalidInput)
	}
	return arr, nil
}
