package catalog

import "github.com/Masterminds/semver/v3"

// Matches reports whether a candidate satisfies a search. Model and app
// name require exact equality. Firmware is satisfied by exact equality or
// by range satisfaction of the normalized candidate firmware. AppVersion is
// satisfied purely by range satisfaction. Empty search fields always match.
func Matches(c AppCandidate, s AppSearch) bool {
	if s.Model != "" && s.Model != c.Model {
		return false
	}
	if s.AppName != "" && s.AppName != c.AppName {
		return false
	}
	if s.Firmware != "" && c.FirmwareVersion != s.Firmware && !rangeSatisfied(Normalize(c.FirmwareVersion), s.Firmware) {
		return false
	}
	if s.AppVersion != "" && !rangeSatisfied(c.AppVersion, s.AppVersion) {
		return false
	}
	return true
}

// FindFirst returns the first candidate of an already-ordered list that
// satisfies the search. Because Scan orders candidates newest-first, this
// is also the preferred candidate under a loose constraint.
func FindFirst(candidates []AppCandidate, s AppSearch) (AppCandidate, bool) {
	for _, c := range candidates {
		if Matches(c, s) {
			return c, true
		}
	}
	return AppCandidate{}, false
}

func rangeSatisfied(version, rng string) bool {
	constraint, err := semver.NewConstraint(rng)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
