package invoice

import (
	"github.com/mslabba/gst-invoice-generator/internal/invoice/repository"
	"github.com/mslabba/gst-invoice-generator/internal/invoice/service"
	stockservice "github.com/mslabba/gst-invoice-generator/internal/stock/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(func(inv *stockservice.Inventory) service.Inventory { return inv }),
	fx.Provide(service.New),
)
