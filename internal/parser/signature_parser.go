// Package parser reads the records of a signing transcript.
//
// A transcript has one record per line, "<label>: <tuple>", where the tuple
// is a Python literal such as (123, 456, None) or (1, 2, b'\x00').
package parser

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrSyntax is returned for records that are not "<label>: <tuple>".
var ErrSyntax = errors.New("invalid record syntax")

// Kind tells which Python literal a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindInt
	KindString
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindInt:
		return "int"
	case KindString:
		return "str"
	case KindBytes:
		return "bytes"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is one element of a record tuple.
type Value struct {
	Kind  Kind
	Int   *big.Int
	Str   string
	Bytes []byte
}

// Record is a parsed transcript line.
type Record struct {
	Label  string
	Values []Value
}

// SplitRecord splits a line on the first ": ".
func SplitRecord(line string) (label, body string, err error) {
	i := strings.Index(line, ": ")
	if i < 0 {
		return "", "", errors.Wrapf(ErrSyntax, "no \": \" separator in %q", line)
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+2:]), nil
}

// ParseRecord parses one transcript line.
func ParseRecord(line string) (*Record, error) {
	label, body, err := SplitRecord(line)
	if err != nil {
		return nil, err
	}
	values, err := ParseTuple(body)
	if err != nil {
		return nil, err
	}
	return &Record{Label: label, Values: values}, nil
}

// ParseTuple evaluates a flat tuple of Python int, str, bytes and None
// literals.
func ParseTuple(s string) ([]Value, error) {
	l := &lexer{src: s}
	l.skipSpace()
	if !l.accept('(') {
		return nil, l.errorf("expected '('")
	}
	var values []Value
	for {
		l.skipSpace()
		if l.accept(')') {
			break
		}
		v, err := l.value()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		l.skipSpace()
		if l.accept(',') {
			continue
		}
		if l.accept(')') {
			break
		}
		return nil, l.errorf("expected ',' or ')'")
	}
	l.skipSpace()
	if !l.eof() {
		return nil, l.errorf("trailing characters")
	}
	return values, nil
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) eof() bool {
	return l.pos >= len(l.src)
}

func (l *lexer) peek() byte {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) accept(c byte) bool {
	if l.peek() == c && !l.eof() {
		l.pos++
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for !l.eof() && strings.IndexByte(" \t\r\n", l.src[l.pos]) >= 0 {
		l.pos++
	}
}

func (l *lexer) errorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrSyntax, "offset %d: %s", l.pos, fmt.Sprintf(format, args...))
}

func (l *lexer) value() (Value, error) {
	switch c := l.peek(); {
	case c == '\'' || c == '"':
		s, err := l.quoted()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Str: string(s)}, nil
	case (c == 'b' || c == 'B') && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '\'' || l.src[l.pos+1] == '"'):
		l.pos++
		b, err := l.quoted()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindBytes, Bytes: b}, nil
	case c == '-' || c == '+' || (c >= '0' && c <= '9'):
		return l.number()
	case strings.HasPrefix(l.src[l.pos:], "None"):
		l.pos += len("None")
		return Value{Kind: KindNone}, nil
	}
	return Value{}, l.errorf("unexpected character %q", l.peek())
}

func (l *lexer) number() (Value, error) {
	start := l.pos
	if l.peek() == '-' || l.peek() == '+' {
		l.pos++
	}
	for !l.eof() && (isAlnum(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
	lit := l.src[start:l.pos]
	if legacyOctal(strings.TrimLeft(lit, "+-")) {
		return Value{}, errors.Wrapf(ErrSyntax, "leading zeros in decimal literal %q", lit)
	}
	// base 0 understands Python's 0x, 0o and 0b prefixes and underscores
	v, ok := new(big.Int).SetString(lit, 0)
	if !ok {
		return Value{}, errors.Wrapf(ErrSyntax, "invalid integer %q", lit)
	}
	return Value{Kind: KindInt, Int: v}, nil
}

func (l *lexer) quoted() ([]byte, error) {
	quote := l.src[l.pos]
	l.pos++
	var out []byte
	for {
		if l.eof() {
			return nil, l.errorf("unterminated string")
		}
		c := l.src[l.pos]
		l.pos++
		switch c {
		case quote:
			return out, nil
		case '\\':
			if l.eof() {
				return nil, l.errorf("unterminated escape")
			}
			e := l.src[l.pos]
			l.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '0':
				out = append(out, 0)
			case '\\', '\'', '"':
				out = append(out, e)
			case 'x':
				if l.pos+2 > len(l.src) {
					return nil, l.errorf("short \\x escape")
				}
				b, err := strconv.ParseUint(l.src[l.pos:l.pos+2], 16, 8)
				if err != nil {
					return nil, l.errorf("bad \\x escape")
				}
				out = append(out, byte(b))
				l.pos += 2
			default:
				out = append(out, '\\', e)
			}
		default:
			out = append(out, c)
		}
	}
}

// legacyOctal reports a literal such as 0123 that Go would read as octal.
// Python only allows zeros after a leading zero.
func legacyOctal(digits string) bool {
	if len(digits) < 2 || digits[0] != '0' {
		return false
	}
	switch digits[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return false
	}
	return strings.Trim(digits, "0_") != ""
}

func isAlnum(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// ParseBigInt parses a big integer written in decimal, 0x-prefixed hex or
// bare hex.
func ParseBigInt(v string) (*big.Int, error) {
	s := strings.TrimSpace(v)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		z, ok := new(big.Int).SetString(s[2:], 16)
		if !ok {
			return nil, errors.Errorf("invalid number format: %s", v)
		}
		return z, nil
	}

	// Try decimal, then hex for strings with hex letters
	if z, ok := new(big.Int).SetString(s, 10); ok {
		return z, nil
	}
	if z, ok := new(big.Int).SetString(s, 16); ok {
		return z, nil
	}
	return nil, errors.Errorf("invalid number format: %s", v)
}
