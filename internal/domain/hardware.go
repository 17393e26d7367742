package domain

import "regexp"

// Hardware constraint tokens a query can carry. The filter stage only acts on
// these exact values.
const (
	HardwareCPUOnly   = "cpu-only"
	HardwareLowMemory = "low-memory"
	HardwareMobile    = "mobile"
)

// ValidHardwareSpec reports whether value is one of the recognized tokens.
func ValidHardwareSpec(value string) bool {
	switch value {
	case HardwareCPUOnly, HardwareLowMemory, HardwareMobile:
		return true
	}
	return false
}

var hardwarePatterns = map[string][]*regexp.Regexp{
	HardwareCPUOnly: {
		regexp.MustCompile(`cpu[- ]only`),
		regexp.MustCompile(`no[- ]?gpu`),
		regexp.MustCompile(`gpu[- ]poor`),
		regexp.MustCompile(`lightweight`),
	},
	HardwareLowMemory: {
		regexp.MustCompile(`low[- ]?memory`),
		regexp.MustCompile(`small[- ]?memory`),
	},
	HardwareMobile: {
		regexp.MustCompile(`mobile`),
		regexp.MustCompile(`raspberry`),
		regexp.MustCompile(`android`),
	},
}

// hardware token detection order is fixed so overlapping phrasing stays stable
var hardwareOrder = []string{HardwareCPUOnly, HardwareLowMemory, HardwareMobile}

// DetectHardwareSpec runs the regex fast path over a lowercased query and
// returns the matched token, or "" when nothing matches.
func DetectHardwareSpec(lowercaseQuery string) string {
	for _, spec := range hardwareOrder {
		for _, pattern := range hardwarePatterns[spec] {
			if pattern.MatchString(lowercaseQuery) {
				return spec
			}
		}
	}
	return ""
}
