// Package gitclient reads record files from a remote Git repository
// that is cloned into memory.
package gitclient

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
)

// Auth holds Basic Auth credentials.
// For Bitbucket Cloud access tokens, use "x-token-auth" as Username
// and the token as Password.
type Auth struct {
	Username string
	Password string // or Token
}

// Client holds a clone of a repository in memory. Only the object database
// is kept; no worktree is checked out.
type Client struct {
	mu   sync.RWMutex
	repo *git.Repository
	auth *http.BasicAuth
}

func New(url string, auth *Auth) (*Client, error) {
	c := &Client{}
	if auth != nil {
		c.auth = &http.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}
	}
	repo, err := git.Clone(memory.NewStorage(), nil, &git.CloneOptions{
		URL:        url,
		NoCheckout: true,
		Auth:       c.auth,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone %s: %w", url, err)
	}
	c.repo = repo
	return c, nil
}

// Update fetches new commits, branches and tags from the remote.
func (c *Client) Update() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	err := c.repo.Fetch(&git.FetchOptions{
		Auth:  c.auth,
		Tags:  git.AllTags,
		Force: true,
		RefSpecs: []config.RefSpec{
			"+refs/heads/*:refs/remotes/origin/*",
		},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}

// ListReferences returns the short names of all branches and tags.
// Remote branches are listed without their remote name.
func (c *Client) ListReferences() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	refs, err := c.repo.References()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var references []string
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name()
		short := name.Short()
		switch {
		case name.IsTag(), name.IsBranch():
		case name.IsRemote():
			// refs/remotes/origin/main -> main
			i := strings.Index(short, "/")
			if i == -1 {
				return nil
			}
			short = short[i+1:]
		default:
			return nil
		}
		if short == "HEAD" || seen[short] {
			return nil
		}
		seen[short] = true
		references = append(references, short)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return references, nil
}

// DefaultBranch returns the short name of the branch HEAD points to.
func (c *Client) DefaultBranch() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	head, err := c.repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return "", fmt.Errorf("cannot resolve HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return "", fmt.Errorf("HEAD is detached at %s", head.Hash())
}

func (c *Client) resolveRevision(revision string) (*plumbing.Hash, error) {
	hash, err := c.repo.ResolveRevision(plumbing.Revision(revision))
	if err == nil {
		return hash, nil
	}
	// Branches of a clone only exist as remote references.
	if !strings.HasPrefix(revision, "refs/") {
		if hash, err := c.repo.ResolveRevision(plumbing.Revision("origin/" + revision)); err == nil {
			return hash, nil
		}
	}
	return nil, fmt.Errorf("revision not found: %w", err)
}

func (c *Client) tree(revision string) (*object.Tree, error) {
	hash, err := c.resolveRevision(revision)
	if err != nil {
		return nil, err
	}
	commit, err := c.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("commit lookup failed: %w", err)
	}
	return commit.Tree()
}

// ReadFile returns the contents of filePath at the given revision.
func (c *Client) ReadFile(revision, filePath string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tree, err := c.tree(revision)
	if err != nil {
		return nil, err
	}
	file, err := tree.File(filePath)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, fmt.Errorf("%s@%s: %w", filePath, revision, fs.ErrNotExist)
		}
		return nil, err
	}
	r, err := file.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ListFilesRecursive lists all files below dirPath at the given revision.
// The returned paths are relative to dirPath.
func (c *Client) ListFilesRecursive(revision, dirPath string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	root, err := c.tree(revision)
	if err != nil {
		return nil, err
	}
	target := root
	if dirPath != "" && dirPath != "." && dirPath != "/" {
		target, err = root.Tree(dirPath)
		if err != nil {
			return nil, fmt.Errorf("directory %q not found or invalid: %w", dirPath, err)
		}
	}
	var paths []string
	iter := target.Files()
	defer iter.Close()
	err = iter.ForEach(func(f *object.File) error {
		paths = append(paths, f.Name)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iteration failed: %w", err)
	}
	return paths, nil
}
