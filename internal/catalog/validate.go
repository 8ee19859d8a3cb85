package catalog

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dnswlt/mdcat/internal/api"
)

const (
	maxQualifiedNameLen = 1024
)

var (
	// keyNameRegex validates the name segment of an additional property key.
	// It must start and end with an alphanumeric character, with dashes, underscores,
	// dots, and alphanumerics allowed in between.
	keyNameRegex = regexp.MustCompile(`^[a-zA-Z0-9]([-a-zA-Z0-9_.]*[a-zA-Z0-9])?$`)

	// dnsLabelRegex validates each segment of a DNS subdomain (the optional key prefix).
	// It must start and end with a lowercase alphanumeric character, with dashes
	// allowed in between.
	dnsLabelRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

	// propertyNameRegex validates property bag names (lowerCamelCase identifiers).
	propertyNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// IsValidClassificationName checks if s can name a classification. The rules
// are the same as for type names.
func IsValidClassificationName(s string) bool {
	return api.IsValidTypeName(s)
}

// IsValidQualifiedName checks if s is a valid qualified name: non-empty valid
// UTF-8 without control characters or leading/trailing whitespace.
func IsValidQualifiedName(s string) bool {
	if len(s) == 0 || len(s) > maxQualifiedNameLen || !utf8.ValidString(s) {
		return false
	}
	if strings.TrimSpace(s) != s {
		return false
	}
	return strings.IndexFunc(s, unicode.IsControl) < 0
}

// IsValidPropertyName checks if s is a valid property bag name.
func IsValidPropertyName(s string) bool {
	return len(s) <= 128 && propertyNameRegex.MatchString(s)
}

// IsValidAdditionalProperty checks if "key: value" is a valid entry of an
// element's additionalProperties map. Keys follow the rules for Kubernetes
// label keys, see
// https://kubernetes.io/docs/concepts/overview/working-with-objects/labels/
// Values are unrestricted.
func IsValidAdditionalProperty(key string, value string) bool {
	return isValidKey(key)
}

// isValidKey validates the key according to Kubernetes rules.
func isValidKey(key string) bool {
	// A key is composed of an optional prefix and a required name, separated by a slash.
	parts := strings.Split(key, "/")
	var prefix, name string

	switch len(parts) {
	case 1:
		name = parts[0]
	case 2:
		prefix, name = parts[0], parts[1]
		if len(prefix) == 0 {
			// An empty prefix is not allowed if the slash is present.
			return false
		}
	default:
		return false
	}

	// It must be between 1 and 63 characters.
	if len(name) == 0 || len(name) > 63 {
		return false
	}
	if !keyNameRegex.MatchString(name) {
		return false
	}

	// If a prefix exists, validate it as a DNS subdomain.
	if len(prefix) > 0 {
		if len(prefix) > 253 {
			return false
		}
		for _, label := range strings.Split(prefix, ".") {
			if len(label) == 0 || len(label) > 63 {
				return false
			}
			if !dnsLabelRegex.MatchString(label) {
				return false
			}
		}
	}

	return true
}
