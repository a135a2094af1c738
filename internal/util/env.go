// Package util provides environment variable parsing helpers shared across components.
package util

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// ParseBoolEnv parses a boolean environment variable with a default value.
// Accepts: true/1/yes/on and false/0/no/off (case-insensitive). Invalid values return default.
func ParseBoolEnv(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("ParseBoolEnv: invalid boolean value, using default", "key", key, "value", val, "default", defaultValue)
		return defaultValue
	}
}

// AdminBinding pairs a WhatsApp number (digits only) with the store owner it
// administers.
type AdminBinding struct {
	RemoteID string
	OwnerID  int64
}

// ParseAdminBindings parses a comma-separated "phone:ownerID" list, e.g.
// "5511999990000:1,5511888880000:2". Phone numbers are reduced to digits.
func ParseAdminBindings(val string) ([]AdminBinding, error) {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil, nil
	}
	var bindings []AdminBinding
	for _, entry := range strings.Split(val, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		phone, owner, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid admin binding %q: expected phone:ownerID", entry)
		}
		digits := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, phone)
		if digits == "" {
			return nil, fmt.Errorf("invalid admin binding %q: phone has no digits", entry)
		}
		ownerID, err := strconv.ParseInt(strings.TrimSpace(owner), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin binding %q: bad owner id: %w", entry, err)
		}
		bindings = append(bindings, AdminBinding{RemoteID: digits, OwnerID: ownerID})
	}
	return bindings, nil
}
