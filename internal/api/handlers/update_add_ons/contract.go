package update_add_ons

import (
	"context"

	updateAddOns "github.com/m04kA/SMC-StudioBooking/internal/usecase/update_add_ons"
)

type UpdateAddOnsUseCase interface {
	Execute(ctx context.Context, req *updateAddOns.Request) (*updateAddOns.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
