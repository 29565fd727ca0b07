package actions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kassick/dotdot/internal/errs"
)

func TestParseExecuteEntries(t *testing.T) {
	acts, err := ParseExecuteEntries("/pkg", []any{"echo one", "echo two"})
	if err != nil {
		t.Fatal(err)
	}
	if len(acts) != 1 {
		t.Fatalf("got %d actions, want a single action holding all commands", len(acts))
	}
	a := acts[0].(ExecuteAction)
	if len(a.Cmds) != 2 || a.Cmds[0] != "echo one" {
		t.Errorf("Cmds = %v", a.Cmds)
	}
}

func TestParseExecuteEntriesEmpty(t *testing.T) {
	acts, err := ParseExecuteEntries("/pkg", nil)
	if err != nil {
		t.Fatal(err)
	}
	if acts != nil {
		t.Errorf("empty entry list should produce no actions, got %v", acts)
	}
}

func TestParseExecuteEntriesRejectsNonStrings(t *testing.T) {
	_, err := ParseExecuteEntries("/pkg", []any{42})
	if !errs.IsCode(err, errs.InvalidActionDescription) {
		t.Errorf("error code = %q", errs.CodeOf(err))
	}
}

func TestExecuteMaterialize(t *testing.T) {
	a := ExecuteAction{Cmds: []string{"echo hi"}, PackagePath: "rel/pkg"}
	m, err := a.Materialize()
	if err != nil {
		t.Fatal(err)
	}
	got := m.(ExecuteAction)
	if !filepath.IsAbs(got.PackagePath) {
		t.Errorf("PackagePath = %q, want absolute", got.PackagePath)
	}

	again, err := m.Materialize()
	if err != nil {
		t.Fatal(err)
	}
	if again.(ExecuteAction).PackagePath != got.PackagePath {
		t.Error("re-materialize changed the package path")
	}
}

func TestExecuteDescribe(t *testing.T) {
	one := ExecuteAction{Cmds: []string{"make install"}}
	if got := one.Describe(); got != `run "make install"` {
		t.Errorf("Describe() = %q", got)
	}
	many := ExecuteAction{Cmds: []string{"a", "b", "c"}}
	if got := many.Describe(); got != "run 3 commands" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestExecuteRunsInPackageDir(t *testing.T) {
	pkg := t.TempDir()
	a := ExecuteAction{
		Cmds:         []string{"echo ran > marker.txt"},
		PackagePath:  pkg,
		materialized: true,
	}
	if err := a.Execute(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(pkg, "marker.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ran\n" {
		t.Errorf("marker content = %q", string(data))
	}
}

func TestExecuteFailureAbortsRest(t *testing.T) {
	pkg := t.TempDir()
	a := ExecuteAction{
		Cmds: []string{
			"echo first > first.txt",
			"false",
			"echo second > second.txt",
		},
		PackagePath:  pkg,
		materialized: true,
	}
	err := a.Execute(context.Background(), false)
	if !errs.IsCode(err, errs.ExecutionFailed) {
		t.Fatalf("error code = %q, want EXECUTION_FAILED", errs.CodeOf(err))
	}
	if _, err := os.Stat(filepath.Join(pkg, "first.txt")); err != nil {
		t.Error("command before the failure should have run")
	}
	if _, err := os.Stat(filepath.Join(pkg, "second.txt")); !os.IsNotExist(err) {
		t.Error("command after the failure must not run")
	}
}

func TestExecuteDryRun(t *testing.T) {
	pkg := t.TempDir()
	a := ExecuteAction{
		Cmds:         []string{"echo ran > marker.txt"},
		PackagePath:  pkg,
		materialized: true,
	}
	if err := a.Execute(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(pkg, "marker.txt")); !os.IsNotExist(err) {
		t.Error("dry run must not execute commands")
	}
}
