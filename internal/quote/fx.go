package quote

import (
	"github.com/offertehq/offerte/internal/quote/repository"
	"github.com/offertehq/offerte/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
