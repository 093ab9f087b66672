package httpx

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// Payload is an insertion-ordered set of request parameters. Each key holds
// either a single string or a list of strings.
//
// For GET requests it becomes the query string, list values comma-joined
// (k=a,b) rather than repeated. For every other verb it becomes a JSON object
// with keys in insertion order.
type Payload struct {
	fields []field
}

type field struct {
	key    string
	values []string
	list   bool
}

func NewPayload() *Payload { return &Payload{} }

// Set stores a single string value. Re-setting a key keeps its original position.
func (p *Payload) Set(key, value string) *Payload {
	p.put(field{key: key, values: []string{value}})
	return p
}

// SetList stores a list value.
func (p *Payload) SetList(key string, values ...string) *Payload {
	p.put(field{key: key, values: append([]string{}, values...), list: true})
	return p
}

func (p *Payload) put(f field) {
	for i := range p.fields {
		if p.fields[i].key == f.key {
			p.fields[i] = f
			return
		}
	}
	p.fields = append(p.fields, f)
}

// Get returns the values stored under key and whether the key is present.
func (p *Payload) Get(key string) ([]string, bool) {
	if p == nil {
		return nil, false
	}
	for _, f := range p.fields {
		if f.key == key {
			return append([]string(nil), f.values...), true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (p *Payload) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.fields))
	for _, f := range p.fields {
		keys = append(keys, f.key)
	}
	return keys
}

func (p *Payload) Len() int {
	if p == nil {
		return 0
	}
	return len(p.fields)
}

// Encode renders the payload as a raw query string: k1=v1&k2=a,b.
// Keys and individual values are escaped; the list separator is not.
func (p *Payload) Encode() string {
	if p.Len() == 0 {
		return ""
	}
	var b strings.Builder
	for i, f := range p.fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.key))
		b.WriteByte('=')
		for j, v := range f.values {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(url.QueryEscape(v))
		}
	}
	return b.String()
}

// MarshalJSON renders the payload as a compact JSON object in insertion order.
// HTML characters are left unescaped. Call it directly when the exact bytes
// matter: json.Marshal re-escapes Marshaler output.
func (p *Payload) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if p != nil {
		for i, f := range p.fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := appendJSON(&buf, f.key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			var v any = f.values
			if !f.list {
				v = f.values[0]
			}
			if err := appendJSON(&buf, v); err != nil {
				return nil, err
			}
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func appendJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
