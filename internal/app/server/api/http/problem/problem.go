package problem

import (
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"equiploan/internal/app/client"
	"equiploan/internal/domain/movement"
)

// FromError переводит доменную ошибку в ответ huma с подходящим статусом
func FromError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, movement.ErrUnknownEquipment), errors.Is(err, movement.ErrUnknownDocument):
		return huma.Error404NotFound(err.Error(), err)
	case errors.Is(err, movement.ErrValidation):
		return huma.Error422UnprocessableEntity(err.Error(), err)
	case errors.Is(err, client.ErrSyncInProgress):
		return huma.Error409Conflict(err.Error(), err)
	case errors.Is(err, movement.ErrTransport),
		errors.Is(err, movement.ErrSubmissionTransport),
		errors.Is(err, movement.ErrParse):
		return huma.Error502BadGateway(err.Error(), err)
	default:
		return huma.Error500InternalServerError("internal error", err)
	}
}
