package schema

import (
	"encoding/json"
	"testing"
)

type vars map[string]string

func (v vars) Get(name string) (string, bool) {
	value, ok := v[name]
	return value, ok
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		text    string
		want    Pair
		wantErr bool
	}{
		{"tid", Pair{From: "tid", To: "tid"}, false},
		{"req_id=request", Pair{From: "req_id", To: "request"}, false},
		{" a = b ", Pair{From: "a", To: "b"}, false},
		{"", Pair{}, true},
		{"=b", Pair{}, true},
		{"a=", Pair{}, true},
	}

	for _, tt := range tests {
		got, err := ParsePair(tt.text)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePair(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePair(%q) = %+v, want %+v", tt.text, got, tt.want)
		}
	}
}

func TestSchema_String(t *testing.T) {
	s := Schema{Key("tid"), {From: "req_id", To: "request"}}
	if got := s.String(); got != "tid,req_id=request" {
		t.Errorf("String() = %q", got)
	}
}

func TestSchema_Scope(t *testing.T) {
	tests := []struct {
		schema Schema
		want   string
		ok     bool
	}{
		{Schema{Key("tid")}, "", false},
		{Schema{Key("tid"), Key("host")}, "host", true},
		{Schema{{From: "host", To: "peer"}}, "", false},
		{Schema{Key("target"), Key("host")}, "target", true},
	}

	for _, tt := range tests {
		got, ok := tt.schema.Scope()
		if got != tt.want || ok != tt.ok {
			t.Errorf("%s: Scope() = (%q, %v), want (%q, %v)", tt.schema, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSchema_JSON(t *testing.T) {
	s := Schema{Key("tid"), {From: "req_id", To: "request"}}

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `["tid","req_id=request"]` {
		t.Errorf("Marshal() = %s", data)
	}

	var joined Schema
	if err := json.Unmarshal([]byte(`"tid,req_id=request"`), &joined); err != nil {
		t.Fatalf("Unmarshal(string) error = %v", err)
	}
	if joined.String() != s.String() {
		t.Errorf("Unmarshal(string) = %s, want %s", joined, s)
	}

	var bad Schema
	if err := json.Unmarshal([]byte(`["a="]`), &bad); err == nil {
		t.Error("Unmarshal() should reject an empty key")
	}
}
