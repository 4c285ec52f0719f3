package domain

import "strings"

// CodeLength is the fixed width of a PSGC code.
const CodeLength = 10

// Level is the administrative level encoded by a PSGC code.
type Level int

const (
	LevelRegion Level = iota
	LevelProvince
	LevelMunicipality
	LevelBarangay
)

func (l Level) String() string {
	switch l {
	case LevelRegion:
		return "region"
	case LevelProvince:
		return "province"
	case LevelMunicipality:
		return "municipality"
	case LevelBarangay:
		return "barangay"
	default:
		return "unknown"
	}
}

// Trailing zero thresholds, longest match wins.
const (
	regionZeros       = 8
	provinceZeros     = 5
	municipalityZeros = 3
)

// Leading digits kept when deriving the parent at each level.
const (
	regionPrefix       = 2
	provincePrefix     = 5
	municipalityPrefix = 7
)

// Code is a validated 10-digit PSGC code.
type Code string

// ParseCode validates s as a PSGC code.
func ParseCode(s string) (Code, error) {
	if len(s) != CodeLength {
		return "", &InvalidCodeError{Code: s}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", &InvalidCodeError{Code: s}
		}
	}
	return Code(s), nil
}

func (c Code) String() string { return string(c) }

// Level classifies the code by the length of its trailing zero run.
func (c Code) Level() Level {
	zeros := trailingZeros(string(c))
	switch {
	case zeros >= regionZeros:
		return LevelRegion
	case zeros >= provinceZeros:
		return LevelProvince
	case zeros >= municipalityZeros:
		return LevelMunicipality
	default:
		return LevelBarangay
	}
}

// ParentCodes returns the candidate parent codes to probe, most specific
// first. Later candidates are only meaningful when earlier ones are absent
// from the store. Regions have no parent.
func (c Code) ParentCodes() []Code {
	switch c.Level() {
	case LevelProvince:
		return []Code{c.truncate(regionPrefix)}
	case LevelMunicipality:
		return []Code{c.truncate(provincePrefix), c.truncate(regionPrefix)}
	case LevelBarangay:
		return []Code{c.truncate(municipalityPrefix), c.truncate(provincePrefix), c.truncate(regionPrefix)}
	default:
		return nil
	}
}

func (c Code) truncate(keep int) Code {
	return Code(string(c)[:keep] + strings.Repeat("0", CodeLength-keep))
}

// Classify parses s and reports its level.
func Classify(s string) (Level, error) {
	c, err := ParseCode(s)
	if err != nil {
		return 0, err
	}
	return c.Level(), nil
}

// ParentCodes parses s and returns its ordered parent candidates.
func ParentCodes(s string) ([]Code, error) {
	c, err := ParseCode(s)
	if err != nil {
		return nil, err
	}
	return c.ParentCodes(), nil
}

func trailingZeros(s string) int {
	n := 0
	for i := len(s) - 1; i >= 0 && s[i] == '0'; i-- {
		n++
	}
	return n
}
