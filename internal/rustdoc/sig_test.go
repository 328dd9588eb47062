package rustdoc

import (
	"encoding/json"
	"testing"
)

func fnItem(t *testing.T, name, inner string) *Item {
	t.Helper()
	return &Item{Name: strPtr(name), Inner: json.RawMessage(inner)}
}

func TestFunctionSignature(t *testing.T) {
	crate := &Crate{Paths: map[string]ItemSummary{
		"7": {Path: []string{"demo", "Widget"}, Kind: "struct"},
	}}

	tests := []struct {
		name  string
		inner string
		want  string
	}{
		{
			name: "plain",
			inner: `{"function": {
				"sig": {"inputs": [["count", {"primitive": "usize"}]], "output": {"primitive": "bool"}},
				"generics": {"params": []},
				"header": {}
			}}`,
			want: "fn check(count: usize) -> bool",
		},
		{
			name: "unit return",
			inner: `{"function": {
				"sig": {"inputs": [], "output": null},
				"generics": {"params": []},
				"header": {}
			}}`,
			want: "fn check()",
		},
		{
			name: "async with self",
			inner: `{"function": {
				"sig": {"inputs": [
					["self", {"borrowed_ref": {"is_mutable": true, "type": {"generic": "Self"}}}],
					["t", {"generic": "T"}]
				], "output": null},
				"generics": {"params": [{"name": "T"}]},
				"header": {"is_async": true}
			}}`,
			want: "async fn check<T>(&mut self, t: T)",
		},
		{
			name: "resolved path with args",
			inner: `{"function": {
				"sig": {"inputs": [], "output": {"resolved_path": {"name": "Vec", "id": 9,
					"args": {"angle_bracketed": {"args": [{"type": {"primitive": "u8"}}]}}}}},
				"generics": {"params": []},
				"header": {}
			}}`,
			want: "fn check() -> Vec<u8>",
		},
		{
			name: "name from summary table",
			inner: `{"function": {
				"sig": {"inputs": [], "output": {"resolved_path": {"name": "", "id": 7}}},
				"generics": {"params": []},
				"header": {}
			}}`,
			want: "fn check() -> Widget",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crate.FunctionSignature(fnItem(t, "check", tt.inner))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFunctionSignatureNonFunction(t *testing.T) {
	crate := &Crate{}
	it := fnItem(t, "Thing", `{"struct": {"kind": {"unit": {}}, "impls": []}}`)
	if got := crate.FunctionSignature(it); got != "" {
		t.Errorf("expected empty signature for struct, got %q", got)
	}
}

func TestTypeName(t *testing.T) {
	crate := &Crate{}
	tests := []struct {
		name     string
		typeJSON string
		want     string
	}{
		{"primitive", `{"primitive": "u32"}`, "u32"},
		{"generic", `{"generic": "T"}`, "T"},
		{"ref", `{"borrowed_ref": {"is_mutable": false, "type": {"primitive": "str"}}}`, "&str"},
		{"mut ref", `{"borrowed_ref": {"is_mutable": true, "type": {"generic": "T"}}}`, "&mut T"},
		{"lifetime ref", `{"borrowed_ref": {"lifetime": "'a", "is_mutable": false, "type": {"primitive": "str"}}}`, "&'a str"},
		{"slice", `{"slice": {"primitive": "u8"}}`, "[u8]"},
		{"tuple", `{"tuple": [{"primitive": "u8"}, {"primitive": "u16"}]}`, "(u8, u16)"},
		{"dyn trait", `{"dyn_trait": {"traits": [{"trait": {"name": "Debug"}}, {"trait": {"name": "Send"}}]}}`, "dyn Debug + Send"},
		{"unknown shape", `{"raw_pointer": {}}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := crate.TypeName(json.RawMessage(tt.typeJSON))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
