package branch

import (
	"fmt"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// GitClient handles the git operations of the branch publisher.
type GitClient struct {
	// WorkspaceDir is the path to the Git workspace
	WorkspaceDir string

	// Token is the optional authentication token for push operations
	Token string
}

// NewGitClient creates a new Git client.
func NewGitClient(workspaceDir, token string) *GitClient {
	return &GitClient{
		WorkspaceDir: workspaceDir,
		Token:        token,
	}
}

// EnsureRepository ensures the workspace is a Git repository.
func (g *GitClient) EnsureRepository() error {
	_, err := gogit.PlainOpen(g.WorkspaceDir)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return fmt.Errorf("workspace is not a git repository")
		}
		return fmt.Errorf("failed to open repository: %w", err)
	}

	return nil
}

// ResetBranch points the named branch at the current HEAD and checks it out,
// creating the branch if it does not exist. Uncommitted working-tree changes
// are kept: the publish tool has usually just written the output files.
func (g *GitClient) ResetBranch(branchName string) error {
	repo, err := gogit.PlainOpen(g.WorkspaceDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	headRef, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	branchRef := plumbing.NewBranchReferenceName(branchName)
	if err := repo.Storer.SetReference(plumbing.NewHashReference(branchRef, headRef.Hash())); err != nil {
		return fmt.Errorf("failed to reset branch %s: %w", branchName, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	err = worktree.Checkout(&gogit.CheckoutOptions{
		Branch: branchRef,
		Keep:   true,
	})
	if err != nil {
		return fmt.Errorf("failed to checkout branch %s: %w", branchName, err)
	}

	return nil
}

// CommitAll stages all working-tree changes and commits them with the given
// message and author. It returns the commit hash, or committed=false when
// the working tree was clean and there was nothing to commit.
func (g *GitClient) CommitAll(message, authorName, authorEmail string) (string, bool, error) {
	repo, err := gogit.PlainOpen(g.WorkspaceDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to open repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", false, fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return "", false, fmt.Errorf("failed to stage changes: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return "", false, fmt.Errorf("failed to get status: %w", err)
	}

	if status.IsClean() {
		return "", false, nil
	}

	commit, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  authorName,
			Email: authorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to commit: %w", err)
	}

	return commit.String(), true, nil
}

// Push force-pushes the branch to the remote, overwriting its previous tip.
func (g *GitClient) Push(branchName, remoteName string) error {
	repo, err := gogit.PlainOpen(g.WorkspaceDir)
	if err != nil {
		return fmt.Errorf("failed to open repository: %w", err)
	}

	refSpec := config.RefSpec("+refs/heads/" + branchName + ":refs/heads/" + branchName)
	opts := &gogit.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refSpec},
		Force:      true,
	}

	if g.Token != "" {
		opts.Auth = &http.BasicAuth{
			Username: "x-access-token", // Generic token auth convention
			Password: g.Token,
		}
	}

	if err := repo.Push(opts); err != nil {
		if err == gogit.NoErrAlreadyUpToDate {
			return nil
		}
		return fmt.Errorf("failed to push branch: %w", err)
	}

	return nil
}
