// Package gitremote implements the revision-resolution collaborator by
// listing a remote repository's advertised refs, the ls-remote way.
package gitremote

import (
	"context"
	"errors"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	logger "github.com/sirupsen/logrus"

	"github.com/openwebmedia/rolldeps/domain"
)

// Resolver resolves a repository's HEAD without cloning anything: it asks
// the remote for its advertised refs over an in-memory storer.
type Resolver struct{}

var _ domain.RevisionResolver = Resolver{}

// New creates a remote HEAD resolver.
func New() Resolver { return Resolver{} }

// Head returns the commit hash the remote's HEAD points at.
func (Resolver) Head(ctx context.Context, url string) (string, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	refs, err := remote.ListContext(ctx, &git.ListOptions{})
	if err != nil {
		return "", &domain.ResolutionError{URL: url, Err: err}
	}

	// HEAD is usually advertised symbolically; chase one level into the
	// branch it names.
	var target plumbing.ReferenceName
	for _, ref := range refs {
		if ref.Name() != plumbing.HEAD {
			continue
		}
		if ref.Type() == plumbing.HashReference {
			logger.Debugf("Resolved HEAD of %s to %s", url, ref.Hash())
			return ref.Hash().String(), nil
		}
		target = ref.Target()
	}

	if target != "" {
		for _, ref := range refs {
			if ref.Name() == target && ref.Type() == plumbing.HashReference {
				logger.Debugf("Resolved HEAD of %s to %s via %s", url, ref.Hash(), target)
				return ref.Hash().String(), nil
			}
		}
	}

	return "", &domain.ResolutionError{URL: url, Err: errors.New("remote did not advertise HEAD")}
}
