package manifest

import (
	"fmt"
	"strconv"
	"strings"
)

// PackageVersion is the (major, minor, patch) triple carried by the
// "Version" property (spec §3). Ordering is strict lexicographic.
type PackageVersion struct {
	Major, Minor, Patch uint32
}

// ParsePackageVersion splits s on "." and parses the longest leading
// decimal prefix of each field as an unsigned integer. An empty or
// non-numeric prefix becomes 0; missing fields default to 0.
func ParsePackageVersion(s string) PackageVersion {
	fields := strings.Split(s, ".")
	values := make([]uint32, 3)
	for i := 0; i < 3 && i < len(fields); i++ {
		values[i] = leadingDecimalPrefix(fields[i])
	}
	return PackageVersion{Major: values[0], Minor: values[1], Patch: values[2]}
}

func leadingDecimalPrefix(field string) uint32 {
	end := 0
	for end < len(field) && field[end] >= '0' && field[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseUint(field[:end], 10, 32)
	if err != nil {
		return 0
	}
	return uint32(n)
}

// String renders the version in the canonical "major.minor.patch" form,
// so that ParsePackageVersion(v.String()) == v for any v.
func (v PackageVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than other, comparing (Major, Minor, Patch) lexicographically.
func (v PackageVersion) Compare(other PackageVersion) int {
	switch {
	case v.Major != other.Major:
		return compareUint32(v.Major, other.Major)
	case v.Minor != other.Minor:
		return compareUint32(v.Minor, other.Minor)
	default:
		return compareUint32(v.Patch, other.Patch)
	}
}

func compareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Less reports whether v sorts strictly before other.
func (v PackageVersion) Less(other PackageVersion) bool {
	return v.Compare(other) < 0
}

// Equal reports whether v and other carry the same triple.
func (v PackageVersion) Equal(other PackageVersion) bool {
	return v.Compare(other) == 0
}
