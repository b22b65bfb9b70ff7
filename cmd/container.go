package cmd

import (
	"go.uber.org/dig"

	"github.com/openwebmedia/rolldeps/application"
	"github.com/openwebmedia/rolldeps/config"
	"github.com/openwebmedia/rolldeps/domain"
	"github.com/openwebmedia/rolldeps/infrastructure/gitiles"
	"github.com/openwebmedia/rolldeps/infrastructure/gitremote"
	"github.com/openwebmedia/rolldeps/infrastructure/identity"
)

// registerProviders registers all layers with the DIG container
// (bottom-up: infrastructure collaborators -> application service).
func registerProviders(container *dig.Container, cfg *config.Config) error {
	if err := container.Provide(func() *config.Config { return cfg }); err != nil {
		return err
	}

	// Infrastructure collaborators, bound to their domain interfaces.
	if err := container.Provide(func(c *config.Config) domain.FileFetcher {
		return gitiles.NewClient(c.Source.URL)
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domain.RevisionResolver {
		return gitremote.New()
	}); err != nil {
		return err
	}
	if err := container.Provide(func() domain.IdentityProvider {
		return identity.New()
	}); err != nil {
		return err
	}

	return container.Provide(application.NewRollService)
}

// injectRollService builds the fully wired roll service.
func injectRollService(cfg *config.Config) (*application.RollService, error) {
	container := dig.New()
	if err := registerProviders(container, cfg); err != nil {
		return nil, err
	}

	var service *application.RollService
	if err := container.Invoke(func(s *application.RollService) {
		service = s
	}); err != nil {
		return nil, err
	}
	return service, nil
}
