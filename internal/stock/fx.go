package stock

import (
	"github.com/mslabba/gst-invoice-generator/internal/stock/repository"
	"github.com/mslabba/gst-invoice-generator/internal/stock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("stock.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewInventory),
	fx.Provide(service.New),
)
