package catalog

import "strings"

// AppCandidate identifies one discovered application binary. Values are
// produced by Scan and never mutated afterwards.
type AppCandidate struct {
	// Path is the absolute host path to the binary.
	Path string
	// Model is the canonical device model name, e.g. "nanoS".
	Model string
	// FirmwareVersion is the raw firmware directory name, which may not be
	// a valid semantic version (see Normalize).
	FirmwareVersion string
	// AppName is the application directory name.
	AppName string
	// AppVersion is the version embedded in the binary filename.
	AppVersion string
}

// AppSearch narrows candidate matching. Empty fields are wildcards.
type AppSearch struct {
	Model      string
	Firmware   string
	AppName    string
	AppVersion string
}

func (s AppSearch) String() string {
	fields := []struct{ key, val string }{
		{"model", s.Model},
		{"firmware", s.Firmware},
		{"app", s.AppName},
		{"version", s.AppVersion},
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		val := f.val
		if val == "" {
			val = "*"
		}
		parts = append(parts, f.key+"="+val)
	}
	return strings.Join(parts, " ")
}

// modelSpec maps a coinapps directory name to its canonical device model.
// Order is the fixed scan priority, highest first.
var modelSpecs = []struct {
	dir   string
	model string
}{
	{"nanos", "nanoS"},
	{"nanosp", "nanoSP"},
	{"nanox", "nanoX"},
	{"stax", "stax"},
}

// CanonicalModel resolves a model alias case-insensitively. The second
// return is false when the name is not a known device model.
func CanonicalModel(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, m := range modelSpecs {
		if m.dir == lower {
			return m.model, true
		}
	}
	return "", false
}

// modelPriority returns the scan rank of a directory name, lower first.
// Unknown directories rank last and are filtered out by the scanner anyway.
func modelPriority(dir string) int {
	lower := strings.ToLower(dir)
	for i, m := range modelSpecs {
		if m.dir == lower {
			return i
		}
	}
	return len(modelSpecs)
}
