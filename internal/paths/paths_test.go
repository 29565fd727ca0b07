package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/kassick/dotdot/internal/errs"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		path string
		want string
	}{
		{"bare tilde", "~", home},
		{"tilde slash", "~/.vimrc", filepath.Join(home, ".vimrc")},
		{"tilde nested", "~/.config/nvim", filepath.Join(home, ".config", "nvim")},
		{"absolute untouched", "/etc/hosts", "/etc/hosts"},
		{"relative untouched", "some/path", "some/path"},
		{"tilde user untouched", "~other/file", "~other/file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandHome(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ExpandHome(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestResolveDestination(t *testing.T) {
	tests := []struct {
		name string
		dest string
		want string
	}{
		{"relative anchored at home", ".vimrc", "~/.vimrc"},
		{"nested relative", ".config/nvim", "~/.config/nvim"},
		{"already anchored", "~/.zshrc", "~/.zshrc"},
		{"bare tilde", "~", "~"},
		{"absolute kept", "/opt/tools", "/opt/tools"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveDestination(tt.dest); got != tt.want {
				t.Errorf("ResolveDestination(%q) = %q, want %q", tt.dest, got, tt.want)
			}
		})
	}
}

func TestResolveSourceNonLocal(t *testing.T) {
	got, err := ResolveSource("https://example.com/repo.git", "/pkg", "~/.repo", false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com/repo.git" {
		t.Errorf("non-local source changed: %q", got)
	}
}

func TestResolveSourceHomeLevelDestination(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	pkg := filepath.Join(home, "dots", "vim")

	got, err := ResolveSource("vimrc", pkg, "~/.vimrc", true)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join("dots", "vim", "vimrc") {
		t.Errorf("ResolveSource() = %q, want dots/vim/vimrc", got)
	}
}

// Destinations nested below home must produce targets relative to the
// destination's own parent directory, not to home. A target computed
// against home would dangle as soon as the link sits one level deeper.
func TestResolveSourceNestedDestination(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	pkg := filepath.Join(home, "dots", "nvim")

	got, err := ResolveSource("init.lua", pkg, "~/.config/nvim/init.lua", true)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("..", "..", "dots", "nvim", "init.lua")
	if got != want {
		t.Errorf("ResolveSource() = %q, want %q", got, want)
	}

	// The computed target must actually resolve back to the package file.
	resolved := filepath.Join(home, ".config", "nvim", got)
	if filepath.Clean(resolved) != filepath.Join(pkg, "init.lua") {
		t.Errorf("target %q does not resolve to the package file", got)
	}
}

func TestResolveSourcePackageOutsideHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	pkg := t.TempDir()

	got, err := ResolveSource("conf", pkg, "~/.conf", true)
	if err != nil {
		t.Fatal(err)
	}
	resolved := filepath.Clean(filepath.Join(home, got))
	if resolved != filepath.Join(pkg, "conf") {
		t.Errorf("target %q resolves to %q, want %q", got, resolved, filepath.Join(pkg, "conf"))
	}
}

func TestBackupNameFirstSlot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	got, err := BackupName(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "config.bk") {
		t.Errorf("BackupName() = %q", got)
	}
}

func TestBackupNameHiddenFile(t *testing.T) {
	dir := t.TempDir()
	got, err := BackupName(filepath.Join(dir, ".bashrc"))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != "_bashrc.bk" {
		t.Errorf("BackupName() base = %q, want _bashrc.bk", filepath.Base(got))
	}
}

func TestBackupNameNumberedSlots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	os.WriteFile(filepath.Join(dir, "config.bk"), []byte("x"), 0o644)
	got, err := BackupName(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "config.bk.1") {
		t.Errorf("BackupName() = %q, want config.bk.1", got)
	}

	os.WriteFile(filepath.Join(dir, "config.bk.1"), []byte("x"), 0o644)
	got, err = BackupName(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "config.bk.2") {
		t.Errorf("BackupName() = %q, want config.bk.2", got)
	}
}

func TestBackupNameExhausted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	os.WriteFile(filepath.Join(dir, "config.bk"), []byte("x"), 0o644)
	for i := 1; i < backupAttempts; i++ {
		name := fmt.Sprintf("config.bk.%d", i)
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644)
	}

	_, err := BackupName(path)
	if err == nil {
		t.Fatal("expected error when all backup slots are taken")
	}
	if !errs.IsCode(err, errs.TooManyBackups) {
		t.Errorf("error code = %q, want TOO_MANY_BACKUPS", errs.CodeOf(err))
	}
}

func TestBackupNameSeesBrokenSymlinks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config")

	// A dangling symlink still occupies the slot.
	os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "config.bk"))

	got, err := BackupName(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(dir, "config.bk.1") {
		t.Errorf("BackupName() = %q, want config.bk.1", got)
	}
}
