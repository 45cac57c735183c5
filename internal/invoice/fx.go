package invoice

import (
	"github.com/offertehq/offerte/internal/invoice/repository"
	"github.com/offertehq/offerte/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
