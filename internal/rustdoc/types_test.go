package rustdoc

import (
	"encoding/json"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestInnerKind(t *testing.T) {
	item := Item{Inner: json.RawMessage(`{"struct":{"kind":{"plain":{"fields":[1]}},"impls":[]}}`)}
	if got := item.InnerKind(); got != KindStruct {
		t.Errorf("InnerKind = %q", got)
	}

	empty := Item{}
	if got := empty.InnerKind(); got != KindUnknown {
		t.Errorf("InnerKind of empty item = %q", got)
	}
}

func TestDecodeInner_Struct(t *testing.T) {
	item := Item{Inner: json.RawMessage(`{"struct":{"kind":{"plain":{"fields":[4,5]}},"impls":[9]}}`)}

	var s Struct
	if !item.DecodeInner(KindStruct, &s) {
		t.Fatal("DecodeInner failed")
	}
	fields := s.Fields()
	if len(fields) != 2 || fields[0] != 4 || fields[1] != 5 {
		t.Errorf("Fields = %v", fields)
	}
	if len(s.Impls) != 1 || s.Impls[0] != 9 {
		t.Errorf("Impls = %v", s.Impls)
	}

	var e Enum
	if item.DecodeInner(KindEnum, &e) {
		t.Error("DecodeInner with wrong kind should fail")
	}
}

func TestStructFields_TupleStruct(t *testing.T) {
	var s Struct
	item := Item{Inner: json.RawMessage(`{"struct":{"kind":{"tuple":[1,2]},"impls":[]}}`)}
	if !item.DecodeInner(KindStruct, &s) {
		t.Fatal("DecodeInner failed")
	}
	if got := s.Fields(); got != nil {
		t.Errorf("tuple struct should have no named fields, got %v", got)
	}
}

func TestVisibilityString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"public"`, "public"},
		{`"default"`, "default"},
		{`{"restricted":{"parent":3,"path":"crate::inner"}}`, "restricted"},
		{``, ""},
	}
	for _, tt := range tests {
		item := Item{Visibility: json.RawMessage(tt.raw)}
		if got := item.VisibilityString(); got != tt.want {
			t.Errorf("VisibilityString(%s) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestDocText(t *testing.T) {
	if got := (&Item{}).DocText(); got != "" {
		t.Errorf("nil docs should yield empty string, got %q", got)
	}
	if got := (&Item{Docs: strPtr("hi")}).DocText(); got != "hi" {
		t.Errorf("DocText = %q", got)
	}
}
