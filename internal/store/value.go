package store

import (
	"container/list"
	"errors"

	"github.com/akashmaji946/nullkv/internal/resp"
)

// ErrNotInteger is returned by StringValue.IncrBy when the current value
// cannot be parsed as a signed 64-bit integer, or when adding the delta
// would overflow one.
var ErrNotInteger = errors.New("store: value is not an integer or out of range")

// Kind tags which variant of Entry is populated.
type Kind int

const (
	// KindNil is the placeholder left by GetOrInsert for a freshly created
	// key that the caller has not yet written.
	KindNil Kind = iota
	KindString
	KindList
)

// StringValue holds a string-typed entry, optimistically decoded to an
// int64 whenever an operation that needs integer semantics succeeds. The
// byte form and the integer form are never both meaningful at once: IncrBy
// rewrites the byte form into the integer form on success.
type StringValue struct {
	bytes []byte
	asInt int64
	isInt bool
}

// StringFromBytes wraps a byte buffer as a StringValue.
func StringFromBytes(b []byte) StringValue {
	return StringValue{bytes: b}
}

// StringFromInt wraps an int64 as a StringValue in its decoded form.
func StringFromInt(n int64) StringValue {
	return StringValue{asInt: n, isInt: true}
}

// ToBytes renders the value as bytes: verbatim for the byte form, decimal
// for the integer form. The conversion is lossless in both directions.
func (s StringValue) ToBytes() []byte {
	if s.isInt {
		return resp.FormatDecimal(s.asInt)
	}
	return s.bytes
}

// IncrBy adds n to the value, parsing the byte form via the shared decimal
// codec if necessary, and rewrites the entry to the integer form on
// success. Overflow and unparsable byte forms both report ErrNotInteger.
func (s *StringValue) IncrBy(n int64) (int64, error) {
	cur := s.asInt
	if !s.isInt {
		parsed, err := resp.ParseDecimal(s.bytes)
		if err != nil {
			return 0, ErrNotInteger
		}
		cur = parsed
	}

	sum, ok := addInt64(cur, n)
	if !ok {
		return 0, ErrNotInteger
	}

	s.asInt = sum
	s.isInt = true
	s.bytes = nil

	return sum, nil
}

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	// Overflow occurs iff a and b have the same sign and the result's sign
	// differs from theirs.
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// ListValue is an ordered, double-ended sequence of byte-string elements.
type ListValue struct {
	elems *list.List
}

// NewList returns an empty list value.
func NewList() *ListValue {
	return &ListValue{elems: list.New()}
}

// PushFront prepends v to the list.
func (l *ListValue) PushFront(v []byte) {
	l.elems.PushFront(v)
}

// PushBack appends v to the list.
func (l *ListValue) PushBack(v []byte) {
	l.elems.PushBack(v)
}

// Len reports the number of elements in the list.
func (l *ListValue) Len() int {
	return l.elems.Len()
}

// Slice returns the list's elements from head to tail as a new slice.
func (l *ListValue) Slice() [][]byte {
	out := make([][]byte, 0, l.elems.Len())
	for e := l.elems.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.([]byte))
	}
	return out
}

// Entry is one key's value in the store: a tagged union of nil, string or
// list, addressed through the type-safe accessors below rather than through
// direct field access.
type Entry struct {
	Kind Kind
	Str  StringValue
	List *ListValue
}

// ErrWrongType is returned by the accessor methods when the stored variant
// does not match the one requested.
var ErrWrongType = errors.New("store: operation against a key holding the wrong kind of value")

func newNilEntry() *Entry {
	return &Entry{Kind: KindNil}
}

// IsNil reports whether the entry is the freshly-inserted placeholder.
func (e *Entry) IsNil() bool {
	return e.Kind == KindNil
}

// AsString returns the entry's string value, or ErrWrongType if the entry
// holds a different variant.
func (e *Entry) AsString() (*StringValue, error) {
	if e.Kind != KindString {
		return nil, ErrWrongType
	}
	return &e.Str, nil
}

// SetString overwrites the entry with a string value.
func (e *Entry) SetString(v StringValue) {
	e.Kind = KindString
	e.Str = v
	e.List = nil
}

// AsList returns the entry's list value, or ErrWrongType if the entry holds
// a different variant.
func (e *Entry) AsList() (*ListValue, error) {
	if e.Kind != KindList {
		return nil, ErrWrongType
	}
	return e.List, nil
}

// SetList overwrites the entry with a list value.
func (e *Entry) SetList(v *ListValue) {
	e.Kind = KindList
	e.List = v
	e.Str = StringValue{}
}
