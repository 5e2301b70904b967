package command

import (
	"fmt"
	"strings"
)

// Registry matches command names against an ordered alias table.
// Entries earlier in the table take precedence.
type Registry struct {
	entries []Alias
	index   map[Identity]int
}

// NewRegistry creates a Registry from aliases in precedence order.
//
// Precondition: No two entries may share an identity or an alias, and no
// alias may be a prefix of an alias of a later entry (the later one could
// never match).
// Postcondition: Returns a Registry or an error describing the first conflict.
func NewRegistry(aliases []Alias) (*Registry, error) {
	r := &Registry{
		entries: make([]Alias, 0, len(aliases)),
		index:   make(map[Identity]int, len(aliases)),
	}
	owner := make(map[string]Identity)

	for i, a := range aliases {
		if a.Identity == IdentityNone {
			return nil, fmt.Errorf("entry %d has no identity", i)
		}
		if _, exists := r.index[a.Identity]; exists {
			return nil, fmt.Errorf("duplicate identity: %q", a.Identity)
		}
		if len(a.Aliases) == 0 {
			return nil, fmt.Errorf("identity %q has no aliases", a.Identity)
		}
		for _, alias := range a.Aliases {
			if alias == "" || alias != strings.ToLower(alias) {
				return nil, fmt.Errorf("alias %q of %q must be non-empty lowercase", alias, a.Identity)
			}
			if existing, exists := owner[alias]; exists {
				return nil, fmt.Errorf("duplicate alias %q: used by %q and %q", alias, existing, a.Identity)
			}
			for _, earlier := range r.entries {
				for _, prev := range earlier.Aliases {
					if strings.HasPrefix(alias, prev) {
						return nil, fmt.Errorf("alias %q of %q is shadowed by alias %q of %q", alias, a.Identity, prev, earlier.Identity)
					}
				}
			}
			owner[alias] = a.Identity
		}
		r.index[a.Identity] = len(r.entries)
		r.entries = append(r.entries, a)
	}

	return r, nil
}

// DefaultRegistry creates a Registry with the built-in alias table.
//
// Postcondition: Returns a Registry with all built-in identities registered.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinAliases())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Matches reports whether name selects identity for a sender with the given
// privilege. Identities that are not privileged ignore the flag.
//
// Precondition: name is already lowercased.
func (r *Registry) Matches(identity Identity, name string, privileged bool) bool {
	i, ok := r.index[identity]
	if !ok {
		return false
	}
	return matchAlias(r.entries[i], name, privileged)
}

// Resolve returns the first identity in precedence order matched by name.
//
// Postcondition: Returns (identity, true) on a match, or (IdentityNone, false).
func (r *Registry) Resolve(name string, privileged bool) (Identity, bool) {
	for _, a := range r.entries {
		if matchAlias(a, name, privileged) {
			return a.Identity, true
		}
	}
	return IdentityNone, false
}

// Aliases returns the table in precedence order.
func (r *Registry) Aliases() []Alias {
	out := make([]Alias, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the alias entry for identity.
func (r *Registry) Lookup(identity Identity) (Alias, bool) {
	i, ok := r.index[identity]
	if !ok {
		return Alias{}, false
	}
	return r.entries[i], true
}

func matchAlias(a Alias, name string, privileged bool) bool {
	if a.Privileged && !privileged {
		return false
	}
	return hasAnyPrefix(name, a.Aliases)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
