package inspect

import (
	"sort"
	"strings"
)

// Attribute names.
const (
	AttrMinor        = "minor"
	AttrSerial       = "serial"
	AttrSize         = "size"
	AttrPermission   = "permission"
	AttrOpenSessions = "open_sessions"
)

// attributeOrder is the display order of device attributes.
var attributeOrder = []string{
	AttrMinor,
	AttrSerial,
	AttrSize,
	AttrPermission,
	AttrOpenSessions,
}

// attributeAliases maps alternate spellings to canonical names.
var attributeAliases = map[string]string{
	"openSessions": AttrOpenSessions,
	"sessions":     AttrOpenSessions,
	"perm":         AttrPermission,
	"serialNumber": AttrSerial,
}

// AttributeNames returns the canonical attribute names in display order.
func AttributeNames() []string {
	names := make([]string, len(attributeOrder))
	copy(names, attributeOrder)
	return names
}

// ResolveAttributeName resolves an attribute name or alias (case-insensitive).
func ResolveAttributeName(name string) (string, bool) {
	lname := strings.ToLower(name)
	for _, n := range attributeOrder {
		if n == lname {
			return n, true
		}
	}
	for k, v := range attributeAliases {
		if strings.ToLower(k) == lname {
			return v, true
		}
	}
	return "", false
}

// AttributeAliases returns all accepted aliases, sorted.
func AttributeAliases() []string {
	aliases := make([]string, 0, len(attributeAliases))
	for k := range attributeAliases {
		aliases = append(aliases, k)
	}
	sort.Strings(aliases)
	return aliases
}
