// SPDX-License-Identifier: MPL-2.0

package compose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"
)

// Options is an ordered mapping of option names to JSON-serializable values.
// Keys marshal in insertion order; unmarshalling keeps document order,
// including for nested objects, which decode as *Options.
//
// The zero value is an empty mapping ready for use.
type Options struct {
	keys   []string
	values map[string]any
}

// NewOptions creates an empty Options.
func NewOptions() *Options {
	return &Options{}
}

// OptionsFromMap copies m into a new Options with keys in lexical order,
// since Go maps carry no order of their own.
func OptionsFromMap(m map[string]any) *Options {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	o := &Options{}
	for _, k := range keys {
		o.Set(k, m[k])
	}
	return o
}

// Set stores value under key. A key that is already present keeps its position.
func (o *Options) Set(key string, value any) *Options {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
	return o
}

// Get returns the value stored under key.
func (o *Options) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in order.
func (o *Options) Keys() []string {
	return slices.Clone(o.keys)
}

// Len returns the number of keys.
func (o *Options) Len() int {
	return len(o.keys)
}

// MarshalJSON renders the mapping as a compact JSON object in key order.
func (o *Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := encodeCompact(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		val, err := encodeCompact(o.values[k])
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", k, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON replaces the contents of o with the JSON object in data.
// Numbers are kept as json.Number so their text survives a round trip.
func (o *Options) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("options must be a JSON object, got %v", tok)
	}

	decoded, err := decodeObject(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after options object")
	}

	*o = *decoded
	return nil
}

// decodeObject reads the members of an object whose opening brace has
// already been consumed.
func decodeObject(dec *json.Decoder) (*Options, error) {
	o := &Options{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", key, err)
		}
		o.Set(key, val)
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return o, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		list := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// encodeCompact marshals v without HTML escaping and without the trailing
// newline json.Encoder appends.
func encodeCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
