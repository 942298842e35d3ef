package catalog

import "strings"

// Normalize repairs a raw version string into valid semantic-version form.
// Firmware directories sometimes carry four-part versions like "1.6.1.9";
// everything past major.minor is folded into a single patch+prerelease
// field joined with '-', so "1.6.1.9" becomes "1.6.1-9". Empty fields are
// dropped. Already-valid "major.minor.patch" strings pass through unchanged.
func Normalize(raw string) string {
	parts := strings.Split(raw, ".")
	if len(parts) > 3 {
		tail := make([]string, 0, len(parts)-2)
		for _, p := range parts[2:] {
			if p != "" {
				tail = append(tail, p)
			}
		}
		parts = append(parts[:2], strings.Join(tail, "-"))
	}
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}
