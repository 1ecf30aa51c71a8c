package value

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrMalformed indicates the JSON input is structurally invalid.
var ErrMalformed = errors.New("value: malformed JSON")

// DecodeJSON decodes a single JSON value, preserving object key order.
func DecodeJSON(r io.Reader) (Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	v, err := decodeNext(dec)
	if err != nil {
		return Value{}, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, fmt.Errorf("%w: trailing content after value", ErrMalformed)
	}
	return v, nil
}

// DecodeString decodes a JSON document from a string.
func DecodeString(input string) (Value, error) {
	return DecodeJSON(strings.NewReader(input))
}

// DecodeStream decodes concatenated or newline-delimited JSON values until EOF.
func DecodeStream(r io.Reader) ([]Value, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var values []Value
	for {
		v, err := decodeNext(dec)
		if errors.Is(err, io.EOF) {
			return values, nil
		}
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
}

func decodeNext(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return decodeToken(dec, tok)
}

func decodeToken(dec *json.Decoder, tok json.Token) (Value, error) {
	switch current := tok.(type) {
	case json.Delim:
		switch current {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return Value{}, fmt.Errorf("%w: unexpected delimiter %q", ErrMalformed, current)
		}
	case nil:
		return Null(), nil
	case bool:
		return Bool(current), nil
	case string:
		return String(current), nil
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: number %q", ErrMalformed, current)
		}
		return Number(parsed), nil
	default:
		return Value{}, fmt.Errorf("%w: unexpected token %v", ErrMalformed, tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	builder := NewMapBuilder()
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		if d, ok := tok.(json.Delim); ok && d == '}' {
			return builder.Build(), nil
		}

		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: object key is not a string", ErrMalformed)
		}

		item, err := decodeNext(dec)
		if err != nil {
			return Value{}, err
		}
		builder.Set(key, item)
	}
}

func decodeArray(dec *json.Decoder) (Value, error) {
	items := make([]Value, 0)
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}

		if d, ok := tok.(json.Delim); ok && d == ']' {
			return Sequence(items...), nil
		}

		item, err := decodeToken(dec, tok)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
}
