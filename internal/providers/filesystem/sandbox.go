package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Rejection reasons reported by the sandbox. They double as metric labels.
const (
	ReasonNotAbsolute  = "not_absolute"
	ReasonNoAncestor   = "no_ancestor"
	ReasonCanonicalize = "canonicalize"
	ReasonOutsideRoots = "outside_roots"
	ReasonSensitive    = "sensitive"
)

// DefaultDenylist holds home-relative directories that are never readable
// or writable, even though they sit inside the home root.
var DefaultDenylist = []string{
	".ssh",
	".gnupg",
	".aws",
	".config/gcloud",
	".kube",
	".docker",
}

// SandboxError describes a refused path.
type SandboxError struct {
	Reason  string
	Path    string
	Message string
	Err     error
}

func (e *SandboxError) Error() string {
	return e.Message
}

func (e *SandboxError) Unwrap() error {
	return e.Err
}

// Sandbox admits absolute paths that resolve inside the home or temp
// directory and outside the denylist. It holds no mutable state and is safe
// for concurrent use.
type Sandbox struct {
	home string
	tmp  string
	deny []denyEntry
}

type denyEntry struct {
	name string
	path string
}

// NewSandbox builds a sandbox rooted at the current user's home directory
// and the OS temp directory.
func NewSandbox(extraDeny []string) (*Sandbox, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not determine home directory: %w", err)
	}
	return NewSandboxWithRoots(home, os.TempDir(), extraDeny)
}

// NewSandboxWithRoots builds a sandbox with explicit roots. Both roots are
// canonicalized so that symlinked locations such as /tmp on macOS compare
// correctly against resolved paths.
func NewSandboxWithRoots(home, tmp string, extraDeny []string) (*Sandbox, error) {
	if !filepath.IsAbs(home) || !filepath.IsAbs(tmp) {
		return nil, fmt.Errorf("sandbox roots must be absolute: home=%q tmp=%q", home, tmp)
	}

	s := &Sandbox{
		home: canonicalRoot(home),
		tmp:  canonicalRoot(tmp),
	}

	for _, name := range append(append([]string{}, DefaultDenylist...), extraDeny...) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		p := filepath.FromSlash(name)
		if !filepath.IsAbs(p) {
			p = filepath.Join(s.home, p)
		}
		s.deny = append(s.deny, denyEntry{name: name, path: filepath.Clean(p)})
	}

	return s, nil
}

// Home returns the canonical home root.
func (s *Sandbox) Home() string { return s.home }

// Temp returns the canonical temp root.
func (s *Sandbox) Temp() string { return s.tmp }

// Validate resolves path and returns its canonical form when admitted.
// The result is a snapshot: a symlink swapped in after validation is not
// detected.
func (s *Sandbox) Validate(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return "", s.reject(ReasonNotAbsolute, path, "path must be absolute", nil)
	}

	existing, missing, ok := nearestExisting(path)
	if !ok {
		return "", s.reject(ReasonNoAncestor, path, "no valid ancestor path exists", nil)
	}

	canonical, err := canonicalize(existing)
	if err != nil {
		return "", s.reject(ReasonCanonicalize, path, fmt.Sprintf("failed to canonicalize path: %v", err), err)
	}

	// Missing components cannot be symlinks, so joining them lexically onto
	// the resolved ancestor gives the path the OS would create.
	final := filepath.Join(append([]string{canonical}, missing...)...)

	if !isWithin(s.home, final) && !isWithin(s.tmp, final) {
		return "", s.reject(ReasonOutsideRoots, path,
			fmt.Sprintf("path must be within home directory (%s) or temp directory (%s)", s.home, s.tmp), nil)
	}

	if name, ok := s.sensitive(filepath.Clean(path), final); ok {
		return "", s.reject(ReasonSensitive, path,
			fmt.Sprintf("access to sensitive directory is not allowed: %s", name), nil)
	}

	return final, nil
}

// sensitive reports the deny entry covering any of paths.
func (s *Sandbox) sensitive(paths ...string) (string, bool) {
	return s.denyRoots().match(paths...)
}

// denyRoots returns every deny entry both as written and resolved, so a
// denylisted directory that is itself a symlink (~/.ssh -> ~/dotfiles/ssh)
// still covers its target. Links are resolved per call because they may
// appear after startup.
func (s *Sandbox) denyRoots() denySet {
	set := make(denySet, 0, len(s.deny))
	for _, d := range s.deny {
		set = append(set, resolvedDeny{denyEntry: d, resolved: canonicalRoot(d.path)})
	}
	return set
}

type resolvedDeny struct {
	denyEntry
	resolved string
}

type denySet []resolvedDeny

func (set denySet) match(paths ...string) (string, bool) {
	for _, d := range set {
		for _, p := range paths {
			if isWithin(d.path, p) || isWithin(d.resolved, p) {
				return d.name, true
			}
		}
	}
	return "", false
}

func (s *Sandbox) reject(reason, path, message string, err error) *SandboxError {
	return &SandboxError{Reason: reason, Path: path, Message: message, Err: err}
}

// nearestExisting splits path into its longest existing prefix and the
// trailing components that do not exist yet. The prefix is taken verbatim
// so that ".." after a symlink is resolved by the filesystem, not lexically.
func nearestExisting(path string) (string, []string, bool) {
	var missing []string
	check := path
	for {
		if _, err := os.Lstat(check); err == nil {
			return check, missing, true
		}

		dir, base := filepath.Split(check)
		parent := strings.TrimRight(dir, string(filepath.Separator))
		if parent == "" || parent == filepath.VolumeName(dir) {
			parent = filepath.VolumeName(dir) + string(filepath.Separator)
		}
		if parent == check {
			return "", nil, false
		}
		if base != "" {
			missing = append([]string{base}, missing...)
		}
		check = parent
	}
}

func canonicalize(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}

func canonicalRoot(root string) string {
	if resolved, err := canonicalize(root); err == nil {
		return resolved
	}
	return filepath.Clean(root)
}

// isWithin reports whether target equals root or lies beneath it, comparing
// whole path components.
func isWithin(root, target string) bool {
	if target == root {
		return true
	}
	prefix := root
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(target, prefix)
}
