package service

import (
	"context"
	"errors"

	dErrors "romportal/pkg/domain-errors"
	"romportal/pkg/platform/sentinel"
)

// wrapStoreErr converts store sentinels into domain errors. Domain errors
// raised inside a transaction callback pass through unchanged.
func wrapStoreErr(err error, notFoundMsg, action string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "certificate number already exists")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.New(dErrors.CodeConflict, "registrant is not pending")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "request timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}
