package customer

import (
	"github.com/offertehq/offerte/internal/customer/repository"
	"github.com/offertehq/offerte/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
