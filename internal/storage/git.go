package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/memfs"
	"github.com/go-git/go-billy/v6/osfs"
	"github.com/go-git/go-billy/v6/util"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing/cache"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/filesystem"
	"github.com/go-git/go-git/v6/storage/memory"
)

// GitStore keeps the snapshot as a file in a git work tree and commits every
// save that changes it, so older versions stay reachable through history.
type GitStore struct {
	repo   *git.Repository
	wt     billy.Filesystem
	name   string
	uri    string
	author GitConfig
}

// Revision is one saved version of the snapshot.
type Revision struct {
	Hash    string
	Message string
	When    time.Time
}

// NewGitStore opens the repository at dir, initializing it when missing.
func NewGitStore(dir, name string, author GitConfig) (*GitStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create dir %s: %w", dir, err)
	}

	wt := osfs.New(dir)
	dotGit, err := wt.Chroot(".git")
	if err != nil {
		return nil, fmt.Errorf("storage: git dir: %w", err)
	}
	storer := filesystem.NewStorageWithOptions(
		dotGit,
		cache.NewObjectLRUDefault(),
		filesystem.Options{ExclusiveAccess: true})

	var repo *git.Repository
	if _, statErr := os.Stat(dotGit.Root()); statErr != nil {
		repo, err = git.Init(storer, git.WithWorkTree(wt))
	} else {
		repo, err = git.Open(storer, wt)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open git repo %s: %w", dir, err)
	}
	return newGitStore(repo, wt, name, "git://"+dir+"/"+name, author), nil
}

// NewMemoryGitStore keeps both the repository and the work tree in memory.
func NewMemoryGitStore(name string, author GitConfig) (*GitStore, error) {
	wt := memfs.New()
	repo, err := git.Init(memory.NewStorage(), git.WithWorkTree(wt))
	if err != nil {
		return nil, fmt.Errorf("storage: init git repo: %w", err)
	}
	return newGitStore(repo, wt, name, "git+mem://"+name, author), nil
}

func newGitStore(repo *git.Repository, wt billy.Filesystem, name, uri string, author GitConfig) *GitStore {
	if author.AuthorName == "" {
		author.AuthorName = "novadoc"
	}
	if author.AuthorEmail == "" {
		author.AuthorEmail = "novadoc@localhost"
	}
	return &GitStore{repo: repo, wt: wt, name: name, uri: uri, author: author}
}

func (s *GitStore) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.wt, s.name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", s.uri, err)
	}
	return data, nil
}

// Save writes the snapshot and commits it. Saving identical bytes creates no commit.
func (s *GitStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := util.WriteFile(s.wt, s.name, data, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", s.uri, err)
	}

	wt, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("storage: worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("storage: status: %w", err)
	}
	if !snapshotChanged(status, s.name) {
		return nil
	}

	if _, err := wt.Add(s.name); err != nil {
		return fmt.Errorf("storage: stage %s: %w", s.name, err)
	}
	msg := fmt.Sprintf("save %s (%d bytes)", s.name, len(data))
	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.author.AuthorName,
			Email: s.author.AuthorEmail,
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("storage: commit: %w", err)
	}
	return nil
}

// snapshotChanged looks only at the snapshot's own entry; other files in the
// work tree are not ours to commit.
func snapshotChanged(status git.Status, name string) bool {
	st, ok := status[filepath.ToSlash(name)]
	if !ok {
		return false
	}
	return st.Worktree != git.Unmodified || st.Staging != git.Unmodified
}

// Revisions lists up to limit saved versions, newest first. limit <= 0 lists all.
func (s *GitStore) Revisions(limit int) ([]Revision, error) {
	if _, err := s.repo.Head(); err != nil {
		// no commit yet
		return nil, nil
	}
	iter, err := s.repo.Log(&git.LogOptions{})
	if err != nil {
		return nil, fmt.Errorf("storage: log: %w", err)
	}
	defer iter.Close()

	var out []Revision
	errStop := errors.New("stop")
	err = iter.ForEach(func(c *object.Commit) error {
		if limit > 0 && len(out) >= limit {
			return errStop
		}
		out = append(out, Revision{Hash: c.Hash.String(), Message: c.Message, When: c.Author.When})
		return nil
	})
	if err != nil && !errors.Is(err, errStop) {
		return nil, err
	}
	return out, nil
}

func (s *GitStore) Close() error { return nil }

func (s *GitStore) URI() string { return s.uri }
