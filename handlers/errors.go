package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gobarber/services/scheduling"
	"gobarber/utils"
)

func statusFor(kind scheduling.Kind) int {
	switch kind {
	case scheduling.KindValidation,
		scheduling.KindSelfBooking,
		scheduling.KindPastDate,
		scheduling.KindSlotUnavailable:
		return http.StatusBadRequest
	case scheduling.KindProviderNotFound, scheduling.KindUnauthorized:
		return http.StatusUnauthorized
	case scheduling.KindCancellationWindow, scheduling.KindAlreadyCanceled:
		return http.StatusUnprocessableEntity
	case scheduling.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"message": ...}. Rejections keep their own
// message; anything else is an internal error.
func respondError(c *gin.Context, err error) {
	logger := getLogger(c)
	var se *scheduling.Error
	if errors.As(err, &se) {
		utils.JSONError(c, logger, statusFor(se.Kind), se.Message, err.Error())
		return
	}
	utils.JSONError(c, logger, http.StatusInternalServerError, "Internal Server Error", err.Error())
}

func respondValidation(c *gin.Context, details string) {
	utils.JSONError(c, getLogger(c), http.StatusBadRequest, scheduling.ErrValidation.Message, details)
}
