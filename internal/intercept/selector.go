package intercept

import (
	"strings"
	"unicode"
)

// InternalPrefix is never captured, so the engine cannot record itself.
const InternalPrefix = "github.com/roach88/recap/"

// Selector decides which calls are captured.
//
// Package-strategy calls are captured when the owner matches an Include
// prefix (or Include is empty), matches no Exclude prefix, and the
// operation is not an accessor. Annotated calls were opted in explicitly
// and only honor Exclude.
type Selector struct {
	Include []string
	Exclude []string

	// KeepAccessors captures getters and setters too.
	KeepAccessors bool
}

// Captures reports whether c goes through record/replay. A nil Selector
// captures everything outside InternalPrefix.
func (s *Selector) Captures(c Call) bool {
	if strings.HasPrefix(c.Owner, InternalPrefix) {
		return false
	}
	if s == nil {
		return true
	}
	if hasAnyPrefix(c.Owner, s.Exclude) {
		return false
	}
	if c.Strategy != "" {
		return true
	}
	if len(s.Include) > 0 && !hasAnyPrefix(c.Owner, s.Include) {
		return false
	}
	if !s.KeepAccessors && (isGetter(c) || isSetter(c)) {
		return false
	}
	return true
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// isGetter matches getX / GetX with no arguments and a result.
func isGetter(c Call) bool {
	return accessorName(c.Operation, "get") && len(c.Args) == 0 && !c.Void()
}

// isSetter matches setX / SetX with exactly one argument and no result.
// Fluent setters that return a value are captured.
func isSetter(c Call) bool {
	return accessorName(c.Operation, "set") && len(c.Args) == 1 && c.Void()
}

// accessorName reports whether name is prefix (either case of the first
// letter) followed by an upper-case letter: "getName" but not "getaway".
func accessorName(name, prefix string) bool {
	if len(name) <= len(prefix) {
		return false
	}
	head := name[:len(prefix)]
	if head != prefix && head != strings.ToUpper(prefix[:1])+prefix[1:] {
		return false
	}
	return unicode.IsUpper(rune(name[len(prefix)]))
}
