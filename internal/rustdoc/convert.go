package rustdoc

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
)

// Format version bounds. Bundles older than MinFormatVersion are rejected;
// bundles between MinFormatVersion and CanonicalFormatVersion are upgraded
// one step at a time before parsing.
const (
	CanonicalFormatVersion = 46
	MinFormatVersion       = 44
)

// VersionError reports a bundle whose format version falls outside the
// supported range.
type VersionError struct {
	Version int
	TooNew  bool
}

func (e *VersionError) Error() string {
	if e.TooNew {
		return fmt.Sprintf("format version %d is too new (supported: %d through %d)",
			e.Version, MinFormatVersion, CanonicalFormatVersion)
	}
	return fmt.Sprintf("format version %d is too old (supported: %d through %d)",
		e.Version, MinFormatVersion, CanonicalFormatVersion)
}

// ParseError reports malformed bundle bytes, naming the stage (and, for
// upgrade steps, the source version) that failed.
type ParseError struct {
	Stage   string
	Version int
	Err     error
}

func (e *ParseError) Error() string {
	if e.Version != 0 {
		return fmt.Sprintf("%s (format version %d): %v", e.Stage, e.Version, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PeekFormatVersion reads the bundle's format_version field without a full
// parse of the document.
func PeekFormatVersion(data []byte) (int, error) {
	v, err := jsonparser.GetInt(data, "format_version")
	if err != nil {
		return 0, &ParseError{Stage: "reading format_version", Err: err}
	}
	return int(v), nil
}

// upgrade is one single-step schema conversion (from → from+1). patch
// mutates the generically-decoded document; a nil patch marks a version
// bump whose only changes were additive enum variants.
type upgrade struct {
	from  int
	name  string
	patch func(doc map[string]any) error
}

var upgrades = []upgrade{
	{from: 44, name: "additive attribute variants"},
	{from: 45, name: "external crate html_root_url", patch: patchExternalHTMLRootURL},
}

// patchExternalHTMLRootURL inserts the html_root_url field, mandatory as of
// version 46, into every external_crates entry that lacks it.
func patchExternalHTMLRootURL(doc map[string]any) error {
	ext, ok := doc["external_crates"].(map[string]any)
	if !ok {
		if doc["external_crates"] == nil {
			return nil
		}
		return fmt.Errorf("external_crates is not an object")
	}
	for id, raw := range ext {
		entry, ok := raw.(map[string]any)
		if !ok {
			return fmt.Errorf("external crate %s is not an object", id)
		}
		if _, present := entry["html_root_url"]; !present {
			entry["html_root_url"] = ""
		}
	}
	return nil
}

// Normalize upgrades bundle bytes of any supported format version to the
// canonical version, returning the canonical bytes and the number of
// conversion steps applied. Already-canonical input is returned unchanged
// with zero steps.
func Normalize(data []byte) ([]byte, int, error) {
	version, err := PeekFormatVersion(data)
	if err != nil {
		return nil, 0, err
	}
	if version < MinFormatVersion {
		return nil, 0, &VersionError{Version: version}
	}
	if version > CanonicalFormatVersion {
		return nil, 0, &VersionError{Version: version, TooNew: true}
	}
	if version == CanonicalFormatVersion {
		return data, 0, nil
	}

	steps := 0
	for _, up := range upgrades {
		if up.from < version {
			continue
		}
		data, err = up.apply(data)
		if err != nil {
			return nil, steps, err
		}
		steps++
	}
	return data, steps, nil
}

// apply runs one conversion step over bundle bytes: decode generically,
// patch, bump the version, re-encode. Each step stands alone, so its output
// is a complete bundle of the next version before the following step reads
// it.
func (up upgrade) apply(data []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Stage: "upgrade: " + up.name, Version: up.from, Err: err}
	}
	if up.patch != nil {
		if err := up.patch(doc); err != nil {
			return nil, &ParseError{Stage: "upgrade: " + up.name, Version: up.from, Err: err}
		}
	}
	doc["format_version"] = up.from + 1
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, &ParseError{Stage: "upgrade: " + up.name, Version: up.from, Err: err}
	}
	return out, nil
}

// Parse normalizes and decodes bundle bytes into a Crate. The result is
// complete or nil; no partially-converted value is ever returned.
func Parse(data []byte) (*Crate, error) {
	canonical, _, err := Normalize(data)
	if err != nil {
		return nil, err
	}

	var crate Crate
	if err := json.Unmarshal(canonical, &crate); err != nil {
		return nil, &ParseError{Stage: "decoding bundle", Version: CanonicalFormatVersion, Err: err}
	}
	if crate.Index == nil {
		return nil, &ParseError{Stage: "validating bundle", Version: crate.FormatVersion,
			Err: fmt.Errorf("missing index")}
	}
	return &crate, nil
}
