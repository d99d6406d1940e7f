package parser

import "fmt"

// Version is the Python language level the parser targets. Grammar that
// is newer than the target is reported instead of silently accepted.
type Version struct {
	Major int
	Minor int
}

// DefaultVersion is the newest level the parser fully understands.
var DefaultVersion = Version{Major: 3, Minor: 12}

// AtLeast reports whether v is at or above the given level.
func (v Version) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// IsZero reports whether the version was left unset.
func (v Version) IsZero() bool {
	return v.Major == 0 && v.Minor == 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
