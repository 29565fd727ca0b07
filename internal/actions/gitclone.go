package actions

import (
	"context"
	"fmt"

	"github.com/kassick/dotdot/internal/errs"
	"github.com/kassick/dotdot/internal/gitutil"
	"github.com/kassick/dotdot/internal/logging"
	"github.com/kassick/dotdot/internal/paths"
)

// GitCloneAction clones or updates a git repository under the home tree.
// The source is an opaque remote locator and is never resolved against the
// filesystem. Execution is idempotent: re-running against an existing clone
// fetches and fast-forwards it.
type GitCloneAction struct {
	SrcDest

	// Branch pins the branch to sync. When empty the branch is chosen
	// dynamically: current checkout, then "main", then "master".
	Branch string
}

// ParseGitCloneEntries builds the declared git clone actions. Entries must
// be {url, to} mappings with an optional branch field; a bare string is
// rejected.
func ParseGitCloneEntries(packagePath string, entries []any) ([]Action, error) {
	out := make([]Action, 0, len(entries))
	for _, raw := range entries {
		entry, ok := raw.(map[string]any)
		if !ok {
			return nil, errs.New(errs.InvalidActionDescription,
				"git_clone requires a mapping with fields url and to")
		}
		url, urlOK := entry["url"].(string)
		if !urlOK {
			return nil, errs.New(errs.InvalidActionDescription, "missing git_clone field url")
		}
		dest, destOK := entry["to"].(string)
		if !destOK {
			return nil, errs.New(errs.InvalidActionDescription, "missing git_clone field to")
		}
		branch := ""
		if rawBranch, present := entry["branch"]; present {
			branch, ok = rawBranch.(string)
			if !ok {
				return nil, errs.Newf(errs.InvalidActionDescription,
					"git_clone field branch must be a string, got %T", rawBranch)
			}
		}

		out = append(out, GitCloneAction{
			SrcDest: SrcDest{
				Source:        url,
				Destination:   dest,
				SourceIsLocal: false,
				PackagePath:   packagePath,
			},
			Branch: branch,
		})
	}
	return out, nil
}

func (a GitCloneAction) Materialize() (Action, error) {
	sd, err := a.SrcDest.materialize()
	if err != nil {
		return nil, err
	}
	return GitCloneAction{SrcDest: sd, Branch: a.Branch}, nil
}

func (a GitCloneAction) Describe() string {
	if a.Branch != "" {
		return fmt.Sprintf("git sync %s (branch %s) -> %s", a.Source, a.Branch, a.Destination)
	}
	return fmt.Sprintf("git sync %s -> %s", a.Source, a.Destination)
}

func (a GitCloneAction) Execute(ctx context.Context, dryRun bool) error {
	dest, err := paths.ExpandHome(a.Destination)
	if err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	log := logging.GetLogger("gitclone")

	repo, err := gitutil.OpenOrInit(dest, a.Source)
	if err != nil {
		return err
	}

	remoteName, err := gitutil.BindRemote(repo, a.Source)
	if err != nil {
		return err
	}
	log.Debug().Str("remote", remoteName).Str("url", a.Source).Msg("remote bound")

	if err := gitutil.Fetch(ctx, repo, remoteName); err != nil {
		return err
	}

	branch, err := gitutil.SelectBranch(repo, remoteName, a.Branch)
	if err != nil {
		return err
	}
	log.Debug().Str("branch", branch).Msg("branch selected")

	return gitutil.CheckoutAndPull(ctx, repo, remoteName, branch)
}
