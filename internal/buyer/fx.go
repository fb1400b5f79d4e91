package buyer

import (
	"github.com/mslabba/gst-invoice-generator/internal/buyer/domain"
	"github.com/mslabba/gst-invoice-generator/internal/buyer/service"
	"github.com/mslabba/gst-invoice-generator/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("buyer.service",
	fx.Provide(repository.ProvideStore[domain.Buyer]),
	fx.Provide(service.New),
)
