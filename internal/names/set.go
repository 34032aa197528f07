package names

import (
	"sort"
	"strings"
)

// Set is an immutable collection of normalized names. The zero value and a
// nil *Set are empty and never match.
type Set struct {
	members map[string]struct{}
}

// NewSet normalizes every entry of list. Blank entries are skipped and
// duplicates collapse.
func NewSet(list []string) *Set {
	members := make(map[string]struct{}, len(list))
	for _, name := range list {
		n := Normalize(name)
		if n == "" {
			continue
		}
		members[n] = struct{}{}
	}
	return &Set{members: members}
}

// ParseList splits a comma-separated list, the format used by the
// C00KED_NAMES environment variable.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Contains reports whether input, once normalized, is a predefined name.
func (s *Set) Contains(input string) bool {
	if s == nil || len(s.members) == 0 {
		return false
	}
	if strings.TrimSpace(input) == "" {
		return false
	}
	_, ok := s.members[Normalize(input)]
	return ok
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Names returns the normalized members in sorted order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.members))
	for n := range s.members {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
