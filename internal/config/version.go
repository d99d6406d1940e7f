package config

import (
	"fmt"
	"strconv"
	"strings"
)

// PyVersion is a Python language level like 3.12.
type PyVersion struct {
	Major int
	Minor int
}

// ParsePyVersion parses "3.12" style strings.
func ParsePyVersion(s string) (PyVersion, error) {
	major, minor, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok {
		return PyVersion{}, fmt.Errorf("invalid version %q: expected MAJOR.MINOR", s)
	}
	maj, err := strconv.Atoi(major)
	if err != nil {
		return PyVersion{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	min, err := strconv.Atoi(minor)
	if err != nil {
		return PyVersion{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if maj != 3 {
		return PyVersion{}, fmt.Errorf("unsupported version %q: only Python 3 is supported", s)
	}
	return PyVersion{Major: maj, Minor: min}, nil
}

func (v PyVersion) AtLeast(major, minor int) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

func (v PyVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}
