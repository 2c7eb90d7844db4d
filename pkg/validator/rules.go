package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

var phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{6,14}$`)

func rule(field, message string, check func() bool) Rule {
	return Rule{Check: check, Error: ValidationError{Field: field, Message: message}}
}

// Required fails on empty or whitespace-only strings.
func Required(field, value string) Rule {
	return rule(field, "field is required", func() bool {
		return strings.TrimSpace(value) != ""
	})
}

// MaxLen limits value to max characters.
func MaxLen(field, value string, max int) Rule {
	return rule(field, fmt.Sprintf("must be at most %d characters long", max), func() bool {
		return utf8.RuneCountInString(value) <= max
	})
}

// ValidEmail accepts a bare RFC 5322 address whose domain has a dot.
func ValidEmail(field, value string) Rule {
	return rule(field, "must be a valid email address", func() bool {
		addr, err := mail.ParseAddress(value)
		if err != nil || addr.Address != value || addr.Name != "" {
			return false
		}
		local, domain, ok := strings.Cut(value, "@")
		if !ok || local == "" {
			return false
		}
		labels := strings.Split(domain, ".")
		if len(labels) < 2 {
			return false
		}
		return !slices.Contains(labels, "")
	})
}

// ValidPhone accepts E.164-style numbers; spaces, dashes, dots and
// parentheses are ignored.
func ValidPhone(field, value string) Rule {
	return rule(field, "must be a valid phone number in international format", func() bool {
		cleaned := strings.Map(func(r rune) rune {
			switch r {
			case ' ', '-', '.', '(', ')':
				return -1
			}
			return r
		}, value)
		return phoneRegex.MatchString(cleaned)
	})
}

// OneOf requires value to be one of options.
func OneOf[T comparable](field string, value T, options []T) Rule {
	return rule(field, fmt.Sprintf("must be one of: %v", options), func() bool {
		return slices.Contains(options, value)
	})
}

// EachOneOf requires every element of values to be one of options.
func EachOneOf[T comparable](field string, values []T, options []T) Rule {
	return rule(field, fmt.Sprintf("each value must be one of: %v", options), func() bool {
		for _, v := range values {
			if !slices.Contains(options, v) {
				return false
			}
		}
		return true
	})
}

// MinItems requires at least min elements.
func MinItems[T any](field string, values []T, min int) Rule {
	return rule(field, fmt.Sprintf("must contain at least %d items", min), func() bool {
		return len(values) >= min
	})
}

// MaxItems allows at most max elements.
func MaxItems[T any](field string, values []T, max int) Rule {
	return rule(field, fmt.Sprintf("must contain at most %d items", max), func() bool {
		return len(values) <= max
	})
}

// Range requires min <= value <= max.
func Range[T Numeric](field string, value, min, max T) Rule {
	return rule(field, fmt.Sprintf("must be between %v and %v", min, max), func() bool {
		return value >= min && value <= max
	})
}
