package seller

import (
	"github.com/mslabba/gst-invoice-generator/internal/seller/domain"
	"github.com/mslabba/gst-invoice-generator/internal/seller/service"
	"github.com/mslabba/gst-invoice-generator/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("seller.service",
	fx.Provide(repository.ProvideStore[domain.Profile]),
	fx.Provide(service.New),
)
