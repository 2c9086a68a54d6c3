package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// InitialVersion is assigned to tabs that no catalog has seen before.
	InitialVersion = "1.0.0"

	versionSeparatorConstant      = "."
	versionComponentCountConstant = 3
	versionTemplateConstant       = "%d.%d.%d"
	versionFieldNameConstant      = "version"
	versionMalformedTemplate      = "%q is not a MAJOR.MINOR.PATCH triplet"
)

// Version is a semantic version triplet.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses a MAJOR.MINOR.PATCH string.
func ParseVersion(value string) (Version, error) {
	trimmedValue := strings.TrimSpace(value)
	components := strings.Split(trimmedValue, versionSeparatorConstant)
	if len(components) != versionComponentCountConstant {
		return Version{}, FormatError{Field: versionFieldNameConstant, Message: fmt.Sprintf(versionMalformedTemplate, value)}
	}

	parsedComponents := make([]int, 0, versionComponentCountConstant)
	for _, component := range components {
		number, conversionError := strconv.Atoi(component)
		if conversionError != nil || number < 0 {
			return Version{}, FormatError{Field: versionFieldNameConstant, Message: fmt.Sprintf(versionMalformedTemplate, value)}
		}
		parsedComponents = append(parsedComponents, number)
	}

	return Version{Major: parsedComponents[0], Minor: parsedComponents[1], Patch: parsedComponents[2]}, nil
}

// String renders the triplet.
func (version Version) String() string {
	return fmt.Sprintf(versionTemplateConstant, version.Major, version.Minor, version.Patch)
}

// BumpPatch returns the version with PATCH incremented by one.
func (version Version) BumpPatch() Version {
	return Version{Major: version.Major, Minor: version.Minor, Patch: version.Patch + 1}
}

// BumpPatchString parses value, increments PATCH and renders the result.
// An empty value is treated as InitialVersion.
func BumpPatchString(value string) (string, error) {
	if len(strings.TrimSpace(value)) == 0 {
		value = InitialVersion
	}
	parsedVersion, parseError := ParseVersion(value)
	if parseError != nil {
		return "", parseError
	}
	return parsedVersion.BumpPatch().String(), nil
}

// NormalizeVersion returns value, or InitialVersion when value is blank.
func NormalizeVersion(value string) string {
	trimmedValue := strings.TrimSpace(value)
	if len(trimmedValue) == 0 {
		return InitialVersion
	}
	return trimmedValue
}
