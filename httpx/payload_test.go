package httpx

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPayload_Encode(t *testing.T) {
	tests := []struct {
		name    string
		payload *Payload
		want    string
	}{
		{name: "nil", payload: nil, want: ""},
		{name: "empty", payload: NewPayload(), want: ""},
		{name: "single", payload: NewPayload().Set("userId", "abc"), want: "userId=abc"},
		{
			name:    "insertion order kept",
			payload: NewPayload().Set("z", "1").Set("a", "2").Set("m", "3"),
			want:    "z=1&a=2&m=3",
		},
		{
			name:    "list comma joined",
			payload: NewPayload().Set("k1", "v1").SetList("k2", "a", "b"),
			want:    "k1=v1&k2=a,b",
		},
		{name: "empty list", payload: NewPayload().SetList("k"), want: "k="},
		{
			name:    "values escaped separator kept",
			payload: NewPayload().SetList("tags", "a b", "c&d", "e,f"),
			want:    "tags=a+b,c%26d,e%2Cf",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payload.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPayload_MarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		payload *Payload
		want    string
	}{
		{name: "nil", payload: nil, want: `{}`},
		{name: "empty", payload: NewPayload(), want: `{}`},
		{
			name:    "ordered and compact",
			payload: NewPayload().Set("userId", "abc").SetList("aliases", "x", "y"),
			want:    `{"userId":"abc","aliases":["x","y"]}`,
		},
		{name: "empty list", payload: NewPayload().SetList("aliases"), want: `{"aliases":[]}`},
		{
			name:    "html left alone",
			payload: NewPayload().Set("q", `<a href="x">&</a>`),
			want:    `{"q":"<a href=\"x\">&</a>"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.payload.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", b, tt.want)
			}
			if !json.Valid(b) {
				t.Errorf("invalid JSON: %s", b)
			}
		})
	}
}

func TestPayload_SetReplacesInPlace(t *testing.T) {
	p := NewPayload().Set("a", "1").Set("b", "2").SetList("a", "x", "y")

	if got := p.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("Keys() = %v", got)
	}
	if got := p.Encode(); got != "a=x,y&b=2" {
		t.Fatalf("Encode() = %q", got)
	}
	v, ok := p.Get("a")
	if !ok || !reflect.DeepEqual(v, []string{"x", "y"}) {
		t.Fatalf("Get(a) = %v, %v", v, ok)
	}
	if _, ok := p.Get("missing"); ok {
		t.Fatalf("Get(missing) reported present")
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d", p.Len())
	}
}

func TestPayload_SetListCopiesInput(t *testing.T) {
	in := []string{"a", "b"}
	p := NewPayload().SetList("k", in...)
	in[0] = "mutated"
	if got := p.Encode(); got != "k=a,b" {
		t.Fatalf("payload shares caller slice: %q", got)
	}
}
