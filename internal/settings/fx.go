package settings

import (
	"github.com/offertehq/offerte/internal/settings/repository"
	"github.com/offertehq/offerte/internal/settings/service"
	"go.uber.org/fx"
)

var Module = fx.Module("settings.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
