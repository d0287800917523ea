package ports

import "go.trai.ch/overlens/internal/core/domain"

// ConfigLoader resolves the project configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the config file from cwd upwards and returns the resolved config.
	// A project without a config file gets the defaults rooted at cwd.
	Load(cwd string) (*domain.Config, error)
}
