package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is a three-component release version. Releases must only ever
// increase: a proposed version is accepted only when strictly greater than
// the current one under component-wise integer comparison, major first.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a version string of exactly three dot-separated
// non-negative integers. Anything else is a syntactic rejection.
func ParseVersion(s string) (Version, error) {
	if !versionPattern.MatchString(s) {
		return Version{}, &FieldError{Field: "version", Message: fmt.Sprintf("%q must be in format X.Y.Z", s)}
	}

	parts := strings.Split(s, ".")
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, &FieldError{Field: "version", Message: fmt.Sprintf("invalid component %q", p)}
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the dotted form
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 comparing v against other component-wise,
// major first.
func (v Version) Compare(other Version) int {
	pairs := [3][2]int{
		{v.Major, other.Major},
		{v.Minor, other.Minor},
		{v.Patch, other.Patch},
	}
	for _, p := range pairs {
		if p[0] > p[1] {
			return 1
		}
		if p[0] < p[1] {
			return -1
		}
	}
	return 0
}

// NextPatch returns the version with the patch component incremented. Used
// to suggest a default for the next release.
func (v Version) NextPatch() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
}

// ValidateProposedVersion enforces both rules on a proposed version string:
// syntactic (X.Y.Z) and semantic (strictly greater than current). A nil
// return means the proposal is accepted.
func ValidateProposedVersion(current, proposed string) error {
	proposedV, err := ParseVersion(proposed)
	if err != nil {
		return err
	}

	currentV, err := ParseVersion(current)
	if err != nil {
		return &FieldError{Field: "version", Message: fmt.Sprintf("current version %q is malformed", current)}
	}

	if proposedV.Compare(currentV) <= 0 {
		return &FieldError{Field: "version", Message: fmt.Sprintf("version must be higher than current version (%s)", current)}
	}

	return nil
}
