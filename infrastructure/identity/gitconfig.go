// Package identity supplies the current user's identity from the global
// git configuration, without shelling out to git.
package identity

import (
	"errors"
	"fmt"

	gitconfig "github.com/go-git/go-git/v5/config"

	"github.com/openwebmedia/rolldeps/domain"
)

// GitConfig reads user.email from the user's global git configuration.
type GitConfig struct{}

var _ domain.IdentityProvider = GitConfig{}

// New creates a git-config-backed identity provider.
func New() GitConfig { return GitConfig{} }

// CurrentUserEmail returns the configured user.email.
func (GitConfig) CurrentUserEmail() (string, error) {
	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return "", fmt.Errorf("failed to load global git config: %w", err)
	}
	if cfg.User.Email == "" {
		return "", errors.New("user.email is not set in the global git config")
	}
	return cfg.User.Email, nil
}
