// Package pathset is a string set keyed by normalized root-relative paths.
package pathset

import "sort"

// Set holds relative paths. The zero value is not usable; call New.
type Set map[string]struct{}

func New(paths ...string) Set {
	s := make(Set, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

func (s Set) Add(p string) { s[p] = struct{}{} }

func (s Set) Has(p string) bool {
	_, ok := s[p]
	return ok
}

func (s Set) Len() int { return len(s) }

// Difference returns the paths in s that are not in o.
func (s Set) Difference(o Set) Set {
	out := make(Set)
	for p := range s {
		if !o.Has(p) {
			out.Add(p)
		}
	}
	return out
}

// Intersection returns the paths present in both s and o.
func (s Set) Intersection(o Set) Set {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(Set, len(small))
	for p := range small {
		if large.Has(p) {
			out.Add(p)
		}
	}
	return out
}

func (s Set) Union(o Set) Set {
	out := make(Set, len(s)+len(o))
	for p := range s {
		out.Add(p)
	}
	for p := range o {
		out.Add(p)
	}
	return out
}

// Sorted returns the paths in lexicographic order.
func (s Set) Sorted() []string {
	paths := make([]string, 0, len(s))
	for p := range s {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
