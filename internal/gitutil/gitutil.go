// Package gitutil wraps the go-git plumbing used to reconcile a local
// working copy with a declared remote. The flow is idempotent and runs in
// full on every invocation: open-or-init, bind a remote for the URL, fetch,
// select a branch, check out and pull.
package gitutil

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kassick/dotdot/internal/errs"
)

// extraRemoteBase names remotes this tool creates when "origin" is already
// taken by a different URL.
const extraRemoteBase = "dotdot"

// OpenOrInit opens the repository at dest, initializing a fresh one (with
// url registered as origin) when none exists. A plain file at dest is fatal.
func OpenOrInit(dest, url string) (*git.Repository, error) {
	if fi, err := os.Stat(dest); err == nil && !fi.IsDir() {
		return nil, errs.Newf(errs.DestinationIsFile, "%s exists and is not a directory", dest)
	}

	repo, err := git.PlainOpen(dest)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, errs.Wrapf(err, errs.GitSyncFailed, "cannot open repository at %s", dest)
	}

	repo, err = git.PlainInit(dest, false)
	if err != nil {
		return nil, errs.Wrapf(err, errs.GitSyncFailed, "cannot initialize repository at %s", dest)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: git.DefaultRemoteName,
		URLs: []string{url},
	}); err != nil {
		return nil, errs.Wrapf(err, errs.GitSyncFailed, "cannot register remote %s", url)
	}
	return repo, nil
}

// BindRemote guarantees some remote points at url and returns its name.
// Existing remotes with other URLs are never touched: when none matches, an
// additional remote with a distinct name is created instead.
func BindRemote(repo *git.Repository, url string) (string, error) {
	remotes, err := repo.Remotes()
	if err != nil {
		return "", errs.Wrap(err, errs.GitSyncFailed, "cannot list remotes")
	}

	if len(remotes) == 0 {
		if _, err := repo.CreateRemote(&config.RemoteConfig{
			Name: git.DefaultRemoteName,
			URLs: []string{url},
		}); err != nil {
			return "", errs.Wrapf(err, errs.GitSyncFailed, "cannot register remote %s", url)
		}
		return git.DefaultRemoteName, nil
	}

	taken := make(map[string]bool, len(remotes))
	for _, remote := range remotes {
		cfg := remote.Config()
		taken[cfg.Name] = true
		for _, remoteURL := range cfg.URLs {
			if remoteURL == url {
				return cfg.Name, nil
			}
		}
	}

	name := extraRemoteBase
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("%s-%d", extraRemoteBase, i)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: name,
		URLs: []string{url},
	}); err != nil {
		return "", errs.Wrapf(err, errs.GitSyncFailed, "cannot register remote %s", url)
	}
	return name, nil
}

// Fetch fetches all refs from the named remote. Already-up-to-date is not an
// error.
func Fetch(ctx context.Context, repo *git.Repository, remoteName string) error {
	err := repo.FetchContext(ctx, &git.FetchOptions{RemoteName: remoteName})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errs.Wrapf(err, errs.GitSyncFailed, "cannot fetch from %s", remoteName)
	}
	return nil
}

// SelectBranch picks the branch to sync: the explicit name when configured,
// otherwise the currently checked-out branch, then "main", then "master".
// The first candidate present on the remote wins; a local branch of that
// name is created (tracking the remote branch) when missing. No candidate on
// the remote is fatal.
func SelectBranch(repo *git.Repository, remoteName, explicit string) (string, error) {
	var candidates []string
	if explicit != "" {
		candidates = []string{explicit}
	} else {
		if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
			candidates = append(candidates, head.Name().Short())
		}
		candidates = append(candidates, "main", "master")
	}

	for _, name := range candidates {
		remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(remoteName, name), true)
		if err != nil {
			continue
		}
		if err := ensureLocalBranch(repo, remoteName, name, remoteRef.Hash()); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", errs.Newf(errs.GitSyncFailed,
		"no branch matching %v exists on remote %s", candidates, remoteName)
}

// ensureLocalBranch creates the local branch at hash, configured to track
// the remote branch, unless it already exists.
func ensureLocalBranch(repo *git.Repository, remoteName, name string, hash plumbing.Hash) error {
	localRef := plumbing.NewBranchReferenceName(name)
	if _, err := repo.Reference(localRef, false); err == nil {
		return nil
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(localRef, hash)); err != nil {
		return errs.Wrapf(err, errs.GitSyncFailed, "cannot create local branch %s", name)
	}
	err := repo.CreateBranch(&config.Branch{
		Name:   name,
		Remote: remoteName,
		Merge:  localRef,
	})
	if err != nil && !errors.Is(err, git.ErrBranchExists) {
		return errs.Wrapf(err, errs.GitSyncFailed, "cannot configure tracking for %s", name)
	}
	return nil
}

// CheckoutAndPull checks out the local branch and pulls from the remote.
// Merge conflicts and diverged histories surface as errors; they are never
// auto-resolved.
func CheckoutAndPull(ctx context.Context, repo *git.Repository, remoteName, branch string) error {
	wt, err := repo.Worktree()
	if err != nil {
		return errs.Wrap(err, errs.GitSyncFailed, "cannot open worktree")
	}

	branchRef := plumbing.NewBranchReferenceName(branch)
	if err := wt.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
		return errs.Wrapf(err, errs.GitSyncFailed, "cannot check out %s", branch)
	}

	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    remoteName,
		ReferenceName: branchRef,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return errs.Wrapf(err, errs.GitSyncFailed, "cannot pull %s from %s", branch, remoteName)
	}
	return nil
}
