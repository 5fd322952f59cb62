// Package policy implements the denylist safety policy applied to user skill
// scripts before they are stored.
package policy

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	defaultModules = []string{
		"os", "subprocess", "sys", "shutil",
		"socket", "http", "urllib", "ftplib", "smtplib",
		"importlib", "ctypes", "pickle", "shelve", "marshal",
		"multiprocessing", "threading", "signal",
		"code", "codeop", "compileall",
		"webbrowser", "antigravity",
	}

	defaultCalls = []string{
		"eval", "exec", "compile", "__import__",
		"globals", "locals", "vars",
		"breakpoint", "exit", "quit",
	}

	defaultAttributes = []string{
		"__builtins__", "__globals__", "__subclasses__",
		"__code__", "__class__", "__bases__", "__mro__",
	}
)

// Denylist is the immutable set of blocked module roots, callable names and
// attribute names. Build it once at start-up and pass it to NewEngine.
type Denylist struct {
	modules    map[string]struct{}
	calls      map[string]struct{}
	attributes map[string]struct{}
}

// DefaultDenylist returns the built-in policy.
func DefaultDenylist() *Denylist {
	d, err := NewDenylist(defaultModules, defaultCalls, defaultAttributes)
	if err != nil {
		panic(fmt.Sprintf("default denylist is invalid: %v", err))
	}
	return d
}

// NewDenylist builds a Denylist. Names must be non-empty, contain no
// whitespace, and the three sets must be pairwise disjoint.
func NewDenylist(modules, calls, attributes []string) (*Denylist, error) {
	d := &Denylist{}

	var err error
	if d.modules, err = toSet("modules", modules); err != nil {
		return nil, err
	}
	if d.calls, err = toSet("calls", calls); err != nil {
		return nil, err
	}
	if d.attributes, err = toSet("attributes", attributes); err != nil {
		return nil, err
	}

	if err := disjoint("modules", d.modules, "calls", d.calls); err != nil {
		return nil, err
	}
	if err := disjoint("modules", d.modules, "attributes", d.attributes); err != nil {
		return nil, err
	}
	if err := disjoint("calls", d.calls, "attributes", d.attributes); err != nil {
		return nil, err
	}

	return d, nil
}

// BlocksModule reports whether the root of a dotted module path is blocked.
func (d *Denylist) BlocksModule(module string) bool {
	root, _, _ := strings.Cut(module, ".")
	_, ok := d.modules[root]
	return ok
}

// BlocksCall reports whether a callee name is blocked.
func (d *Denylist) BlocksCall(name string) bool {
	_, ok := d.calls[name]
	return ok
}

// BlocksAttribute reports whether an attribute name is blocked.
func (d *Denylist) BlocksAttribute(name string) bool {
	_, ok := d.attributes[name]
	return ok
}

// Modules returns the blocked module roots, sorted.
func (d *Denylist) Modules() []string { return sortedKeys(d.modules) }

// Calls returns the blocked callable names, sorted.
func (d *Denylist) Calls() []string { return sortedKeys(d.calls) }

// Attributes returns the blocked attribute names, sorted.
func (d *Denylist) Attributes() []string { return sortedKeys(d.attributes) }

func toSet(kind string, names []string) (map[string]struct{}, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("denylist %s must not be empty", kind)
	}

	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n == "" || strings.ContainsAny(n, " \t\r\n") {
			return nil, fmt.Errorf("denylist %s: invalid name %q", kind, n)
		}
		set[n] = struct{}{}
	}
	return set, nil
}

func disjoint(aKind string, a map[string]struct{}, bKind string, b map[string]struct{}) error {
	var overlap []string
	for n := range a {
		if _, ok := b[n]; ok {
			overlap = append(overlap, n)
		}
	}
	if len(overlap) == 0 {
		return nil
	}

	slices.Sort(overlap)
	return errors.New("denylist " + aKind + " and " + bKind + " overlap: " + strings.Join(overlap, ", "))
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
