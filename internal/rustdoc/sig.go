package rustdoc

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FunctionSignature renders a plain-text Rust signature for a function
// item, e.g. "async fn spawn<T>(future: T) -> JoinHandle". Returns "" for
// non-function items or unparseable payloads.
func (c *Crate) FunctionSignature(it *Item) string {
	fnData := unwrapInner(it.Inner, KindFunction)
	if fnData == nil {
		return ""
	}

	var fn struct {
		Sig struct {
			Inputs []json.RawMessage `json:"inputs"`
			Output json.RawMessage   `json:"output"`
		} `json:"sig"`
		Generics struct {
			Params []struct {
				Name string `json:"name"`
			} `json:"params"`
		} `json:"generics"`
		Header struct {
			IsConst  bool `json:"is_const"`
			IsUnsafe bool `json:"is_unsafe"`
			IsAsync  bool `json:"is_async"`
		} `json:"header"`
	}
	if err := json.Unmarshal(fnData, &fn); err != nil {
		return ""
	}

	var b strings.Builder
	if fn.Header.IsConst {
		b.WriteString("const ")
	}
	if fn.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}
	if fn.Header.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString("fn ")
	if it.Name != nil {
		b.WriteString(*it.Name)
	}

	var genericNames []string
	for _, p := range fn.Generics.Params {
		// Synthetic lifetimes and const params still carry a name; only
		// the anonymous ones are skipped.
		if p.Name != "" && !strings.HasPrefix(p.Name, "impl ") {
			genericNames = append(genericNames, p.Name)
		}
	}
	if len(genericNames) > 0 {
		b.WriteString("<" + strings.Join(genericNames, ", ") + ">")
	}

	b.WriteString("(")
	var params []string
	for _, input := range fn.Sig.Inputs {
		// Each input is a [name, type] pair.
		var pair []json.RawMessage
		if err := json.Unmarshal(input, &pair); err != nil || len(pair) < 2 {
			continue
		}
		var paramName string
		json.Unmarshal(pair[0], &paramName)

		if paramName == "self" {
			params = append(params, selfShorthand(pair[1]))
			continue
		}
		typeName := c.TypeName(pair[1])
		if typeName == "" {
			typeName = "_"
		}
		params = append(params, paramName+": "+typeName)
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")")

	// A null output means the unit return type.
	if len(fn.Sig.Output) > 0 && string(fn.Sig.Output) != "null" {
		if ret := c.TypeName(fn.Sig.Output); ret != "" {
			b.WriteString(" -> " + ret)
		}
	}

	return b.String()
}

// selfShorthand renders a self parameter the way Rust source spells it:
// self, &self, &mut self, &'a self.
func selfShorthand(typeJSON json.RawMessage) string {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(typeJSON, &outer); err != nil {
		return "self"
	}
	if _, ok := outer["generic"]; ok {
		return "self"
	}
	br, ok := outer["borrowed_ref"]
	if !ok {
		return "self"
	}
	var r struct {
		Lifetime  *string `json:"lifetime"`
		IsMutable bool    `json:"is_mutable"`
	}
	json.Unmarshal(br, &r)
	prefix := "&"
	if r.Lifetime != nil && *r.Lifetime != "" {
		prefix += *r.Lifetime + " "
	}
	if r.IsMutable {
		prefix += "mut "
	}
	return prefix + "self"
}

// TypeName renders a rustdoc type expression as plain Rust syntax. Shapes
// it does not understand render as "".
func (c *Crate) TypeName(typeJSON json.RawMessage) string {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(typeJSON, &outer); err != nil {
		return ""
	}

	if resolved, ok := outer["resolved_path"]; ok {
		return c.resolvedPathName(resolved)
	}
	if prim, ok := outer["primitive"]; ok {
		var name string
		if json.Unmarshal(prim, &name) == nil {
			return name
		}
	}
	if g, ok := outer["generic"]; ok {
		var name string
		if json.Unmarshal(g, &name) == nil {
			return name
		}
	}
	if br, ok := outer["borrowed_ref"]; ok {
		var r struct {
			Lifetime  *string         `json:"lifetime"`
			IsMutable bool            `json:"is_mutable"`
			Type      json.RawMessage `json:"type"`
		}
		if json.Unmarshal(br, &r) == nil {
			prefix := "&"
			if r.Lifetime != nil && *r.Lifetime != "" {
				prefix += *r.Lifetime + " "
			}
			if r.IsMutable {
				prefix += "mut "
			}
			return prefix + c.TypeName(r.Type)
		}
	}
	if sl, ok := outer["slice"]; ok {
		if inner := c.TypeName(sl); inner != "" {
			return "[" + inner + "]"
		}
	}
	if tp, ok := outer["tuple"]; ok {
		var elems []json.RawMessage
		if json.Unmarshal(tp, &elems) == nil {
			parts := make([]string, 0, len(elems))
			for _, e := range elems {
				parts = append(parts, c.TypeName(e))
			}
			return "(" + strings.Join(parts, ", ") + ")"
		}
	}
	if dt, ok := outer["dyn_trait"]; ok {
		var d struct {
			Traits []struct {
				Trait struct {
					Name string `json:"name"`
				} `json:"trait"`
			} `json:"traits"`
		}
		if json.Unmarshal(dt, &d) == nil && len(d.Traits) > 0 {
			names := make([]string, 0, len(d.Traits))
			for _, t := range d.Traits {
				names = append(names, t.Trait.Name)
			}
			return "dyn " + strings.Join(names, " + ")
		}
	}
	return ""
}

// resolvedPathName names a path type, preferring the inline name and
// falling back to the summary table, with angle-bracketed generic args
// rendered recursively.
func (c *Crate) resolvedPathName(resolved json.RawMessage) string {
	var rp struct {
		Name string           `json:"name"`
		ID   int              `json:"id"`
		Args *json.RawMessage `json:"args"`
	}
	if err := json.Unmarshal(resolved, &rp); err != nil {
		return ""
	}

	name := rp.Name
	if name == "" {
		if summary, ok := c.Paths[strconv.Itoa(rp.ID)]; ok && len(summary.Path) > 0 {
			name = summary.Path[len(summary.Path)-1]
		}
	}
	if name == "" {
		return ""
	}
	// Qualified inline names keep only the final segment.
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}

	if rp.Args != nil {
		var args struct {
			AngleBracketed *struct {
				Args []json.RawMessage `json:"args"`
			} `json:"angle_bracketed"`
		}
		if json.Unmarshal(*rp.Args, &args) == nil && args.AngleBracketed != nil {
			var parts []string
			for _, arg := range args.AngleBracketed.Args {
				var a map[string]json.RawMessage
				if json.Unmarshal(arg, &a) != nil {
					continue
				}
				if typeData, ok := a["type"]; ok {
					if t := c.TypeName(typeData); t != "" {
						parts = append(parts, t)
					}
				} else if lt, ok := a["lifetime"]; ok {
					var l string
					if json.Unmarshal(lt, &l) == nil && l != "" {
						parts = append(parts, l)
					}
				}
			}
			if len(parts) > 0 {
				name += "<" + strings.Join(parts, ", ") + ">"
			}
		}
	}
	return name
}
