package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-floor/services"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// classify maps ledger and registry errors to an HTTP status and the error
// code sent back in the envelope.
func classify(err error) (int, utils.ErrorDetail) {
	var ve services.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, utils.ErrorDetail{Code: utils.ErrCodeValidation, Field: ve.Field}
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrMenuItemNotFound):
		return http.StatusNotFound, utils.ErrorDetail{Code: utils.ErrCodeNotFound}
	case errors.Is(err, services.ErrDuplicateTableNumber),
		errors.Is(err, services.ErrTableInUse),
		errors.Is(err, services.ErrTableHasActiveOrder),
		errors.Is(err, services.ErrTableNotAvailable):
		return http.StatusConflict, utils.ErrorDetail{Code: utils.ErrCodeConflict}
	case errors.Is(err, services.ErrOrderPaid):
		return http.StatusUnprocessableEntity, utils.ErrorDetail{Code: utils.ErrCodeOrderPaid}
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, utils.ErrorDetail{Code: utils.ErrCodeInvalidTransition}
	case errors.Is(err, services.ErrMenuItemUnavailable):
		return http.StatusUnprocessableEntity, utils.ErrorDetail{Code: utils.ErrCodeUnavailable}
	}
	return http.StatusInternalServerError, utils.ErrorDetail{Code: utils.ErrCodeInternal}
}

func respondServiceError(c *gin.Context, err error) {
	code, detail := classify(err)
	if code == http.StatusInternalServerError {
		utils.ErrorLogger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	utils.RespondErrorDetail(c, code, err, detail)
}
