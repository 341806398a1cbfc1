package api

import (
	"errors"
	"log/slog"
	"net/http"

	echo "github.com/labstack/echo/v5"

	"github.com/codeready-toolchain/quizkernel/pkg/kernel"
	"github.com/codeready-toolchain/quizkernel/pkg/repository"
)

// wrapRepoNotFound adapts a raw repository error to the kernel's
// sentinel taxonomy for the supplemented interactions endpoint, which
// reads the repository directly rather than through an Engine method.
func wrapRepoNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return kernel.ErrNotFound
	}
	return err
}

// mapKernelError maps kernel-layer errors to HTTP error responses,
// generalised from pkg/api/errors.go's mapServiceError, which performs
// the same errors.As/errors.Is cascade over TARSy's service-layer error
// taxonomy.
func mapKernelError(err error) *echo.HTTPError {
	var validErr *kernel.ValidationError
	if errors.As(err, &validErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validErr.Error())
	}
	var numErr *kernel.NumericError
	if errors.As(err, &numErr) {
		slog.Error("numeric error in kernel operation", "op", numErr.Op, "error", numErr.Err)
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "unable to compute result for this session")
	}
	if errors.Is(err, kernel.ErrInvalidArgument) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, kernel.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "resource not found")
	}
	if errors.Is(err, kernel.ErrConflict) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	slog.Error("unexpected kernel error", "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
