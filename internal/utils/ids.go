// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import (
	"strconv"
	"strings"
)

// ParseID parses a positive decimal identifier as found in path parameters
// and headers. Surrounding whitespace is ignored; signs, zero, and values
// that overflow int64 are rejected.
//
// Example:
//
//	id, ok := utils.ParseID("42")  // 42, true
//	_, ok = utils.ParseID("0")     // false
//	_, ok = utils.ParseID("+7")    // false
func ParseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
