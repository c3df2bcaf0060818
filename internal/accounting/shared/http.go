package shared

import (
	"errors"

	"github.com/odyssey-erp/odyssey-ledger/internal/platform/httpx"
	internalShared "github.com/odyssey-erp/odyssey-ledger/internal/shared"
)

// HTTPError tags ledger errors with the httpx class RespondError understands.
func HTTPError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, internalShared.ErrNotFound):
		return httpx.Classify(httpx.ErrNotFound, err)
	case errors.Is(err, ErrDuplicateCode), errors.Is(err, internalShared.ErrIdempotencyConflict):
		return httpx.Classify(httpx.ErrDuplicate, err)
	case errors.Is(err, internalShared.ErrScopeRequired):
		return httpx.Classify(httpx.ErrUnauthorized, err)
	case IsValidation(err):
		return httpx.Classify(httpx.ErrValidation, err)
	}
	return err
}
