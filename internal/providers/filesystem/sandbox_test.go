package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sandboxFixture struct {
	sandbox *Sandbox
	base    string
	home    string
	tmp     string
	outside string
}

func newSandboxFixture(t *testing.T, extraDeny ...string) *sandboxFixture {
	t.Helper()

	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	f := &sandboxFixture{
		base:    base,
		home:    filepath.Join(base, "home", "alice"),
		tmp:     filepath.Join(base, "tmp"),
		outside: filepath.Join(base, "outside"),
	}
	for _, dir := range []string{f.home, f.tmp, f.outside} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	f.sandbox, err = NewSandboxWithRoots(f.home, f.tmp, extraDeny)
	require.NoError(t, err)
	return f
}

func requireReason(t *testing.T, err error, reason string) {
	t.Helper()
	require.Error(t, err)
	var sbErr *SandboxError
	require.True(t, errors.As(err, &sbErr), "expected *SandboxError, got %T", err)
	assert.Equal(t, reason, sbErr.Reason)
}

func TestValidateRejectsRelativePaths(t *testing.T) {
	f := newSandboxFixture(t)

	for _, p := range []string{"", "notes.txt", "./notes.txt", "../etc/passwd", "home/alice"} {
		_, err := f.sandbox.Validate(p)
		requireReason(t, err, ReasonNotAbsolute)
		assert.Equal(t, "path must be absolute", err.Error())
	}
}

func TestValidateAcceptsPathsInsideRoots(t *testing.T) {
	f := newSandboxFixture(t)

	existing := filepath.Join(f.home, "project", "main.go")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("package main"), 0o644))

	tests := []struct {
		name string
		path string
		want string
	}{
		{"home root", f.home, f.home},
		{"existing file", existing, existing},
		{"missing file in existing dir", filepath.Join(f.home, "project", "new.go"), filepath.Join(f.home, "project", "new.go")},
		{"missing nested dirs", filepath.Join(f.home, "a", "b", "c.txt"), filepath.Join(f.home, "a", "b", "c.txt")},
		{"temp dir", filepath.Join(f.tmp, "scratch.txt"), filepath.Join(f.tmp, "scratch.txt")},
		{"dot segments inside home", filepath.Join(f.home, "project") + "/./../project/main.go", existing},
		{"trailing slash", f.home + "/new-dir/", filepath.Join(f.home, "new-dir")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.sandbox.Validate(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateRejectsPathsOutsideRoots(t *testing.T) {
	f := newSandboxFixture(t)

	sibling := filepath.Join(f.base, "home", "alice2")
	require.NoError(t, os.MkdirAll(sibling, 0o755))

	tests := []struct {
		name string
		path string
	}{
		{"system directory", "/etc"},
		{"filesystem root", "/"},
		{"outside dir", filepath.Join(f.outside, "file.txt")},
		{"sibling sharing a name prefix", filepath.Join(sibling, "secrets.txt")},
		{"traversal through missing dirs", filepath.Join(f.home, "missing", "..", "..", "..", "outside", "x")},
		{"traversal through existing dirs", f.home + "/../../outside/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sandbox.Validate(tt.path)
			requireReason(t, err, ReasonOutsideRoots)
			assert.Contains(t, err.Error(), "path must be within home directory")
		})
	}
}

func TestValidateResolvesSymlinks(t *testing.T) {
	f := newSandboxFixture(t)

	escape := filepath.Join(f.home, "escape")
	require.NoError(t, os.Symlink(f.outside, escape))

	_, err := f.sandbox.Validate(escape)
	requireReason(t, err, ReasonOutsideRoots)

	// A file that does not exist yet beneath the link still resolves through it
	_, err = f.sandbox.Validate(filepath.Join(escape, "new.txt"))
	requireReason(t, err, ReasonOutsideRoots)

	// ".." after a symlink is resolved against the link target
	_, err = f.sandbox.Validate(escape + "/../outside/x")
	requireReason(t, err, ReasonOutsideRoots)

	inside := filepath.Join(f.home, "docs")
	require.NoError(t, os.Mkdir(inside, 0o755))
	alias := filepath.Join(f.tmp, "docs-link")
	require.NoError(t, os.Symlink(inside, alias))

	got, err := f.sandbox.Validate(filepath.Join(alias, "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(inside, "readme.md"), got)
}

func TestValidateRejectsSensitiveDirectories(t *testing.T) {
	f := newSandboxFixture(t, ".password-store")

	require.NoError(t, os.MkdirAll(filepath.Join(f.home, ".ssh"), 0o700))
	link := filepath.Join(f.home, "keys")
	require.NoError(t, os.Symlink(filepath.Join(f.home, ".ssh"), link))

	tests := []struct {
		name  string
		path  string
		entry string
	}{
		{"existing ssh dir", filepath.Join(f.home, ".ssh"), ".ssh"},
		{"ssh key", filepath.Join(f.home, ".ssh", "id_ed25519"), ".ssh"},
		{"symlink into ssh", filepath.Join(link, "id_ed25519"), ".ssh"},
		{"missing aws dir", filepath.Join(f.home, ".aws", "credentials"), ".aws"},
		{"nested gcloud", filepath.Join(f.home, ".config", "gcloud", "creds.json"), ".config/gcloud"},
		{"kube", filepath.Join(f.home, ".kube", "config"), ".kube"},
		{"configured extra", filepath.Join(f.home, ".password-store", "bank.gpg"), ".password-store"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.sandbox.Validate(tt.path)
			requireReason(t, err, ReasonSensitive)
			assert.Equal(t, "access to sensitive directory is not allowed: "+tt.entry, err.Error())
		})
	}

	t.Run("neighbours are allowed", func(t *testing.T) {
		for _, p := range []string{
			filepath.Join(f.home, ".config", "nvim", "init.lua"),
			filepath.Join(f.home, ".sshrc"),
			filepath.Join(f.home, ".dockerignore"),
		} {
			_, err := f.sandbox.Validate(p)
			assert.NoError(t, err, p)
		}
	})
}

func TestValidateRejectsSymlinkedSensitiveDirectory(t *testing.T) {
	f := newSandboxFixture(t)

	target := filepath.Join(f.home, "dotfiles", "ssh")
	require.NoError(t, os.MkdirAll(target, 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(target, "id_rsa"), []byte("key"), 0o600))
	require.NoError(t, os.Symlink(target, filepath.Join(f.home, ".ssh")))

	for _, p := range []string{
		filepath.Join(f.home, ".ssh", "id_rsa"),
		filepath.Join(f.home, ".ssh", "authorized_keys"),
		filepath.Join(f.home, ".ssh"),
		filepath.Join(target, "id_rsa"),
		filepath.Join(f.home, "dotfiles", "..", ".ssh", "config"),
	} {
		_, err := f.sandbox.Validate(p)
		requireReason(t, err, ReasonSensitive)
		assert.Equal(t, "access to sensitive directory is not allowed: .ssh", err.Error(), p)
	}

	_, err := f.sandbox.Validate(filepath.Join(f.home, "dotfiles", "zshrc"))
	assert.NoError(t, err)
}

func TestValidateRejectsSensitiveLinkCreatedLater(t *testing.T) {
	f := newSandboxFixture(t)

	target := filepath.Join(f.home, "dotfiles", "aws")
	require.NoError(t, os.MkdirAll(target, 0o700))
	_, err := f.sandbox.Validate(filepath.Join(target, "credentials"))
	require.NoError(t, err)

	require.NoError(t, os.Symlink(target, filepath.Join(f.home, ".aws")))
	_, err = f.sandbox.Validate(filepath.Join(target, "credentials"))
	requireReason(t, err, ReasonSensitive)
}

func TestValidateDanglingSymlink(t *testing.T) {
	f := newSandboxFixture(t)

	dangling := filepath.Join(f.home, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(f.outside, "gone"), dangling))

	_, err := f.sandbox.Validate(dangling)
	requireReason(t, err, ReasonCanonicalize)
	assert.Contains(t, err.Error(), "failed to canonicalize path")
}

func TestNewSandboxWithRootsRequiresAbsoluteRoots(t *testing.T) {
	_, err := NewSandboxWithRoots("home", "/tmp", nil)
	assert.Error(t, err)
}

func TestNewSandboxUsesUserHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	sandbox, err := NewSandbox(nil)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(home)
	require.NoError(t, err)
	assert.Equal(t, want, sandbox.Home())
}

func TestIsWithin(t *testing.T) {
	assert.True(t, isWithin("/home/alice", "/home/alice"))
	assert.True(t, isWithin("/home/alice", "/home/alice/x"))
	assert.False(t, isWithin("/home/alice", "/home/alice2"))
	assert.False(t, isWithin("/home/alice", "/home"))
	assert.True(t, isWithin("/", "/etc"))
}
