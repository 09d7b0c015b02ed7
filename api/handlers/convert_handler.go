package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devadigapratham/zpl2pdf/apperr"
	"github.com/devadigapratham/zpl2pdf/i18n"
)

// Convert forwards the text/plain ZPL body to the converter
func (h *Handler) Convert(c *gin.Context) {
	// Report missing configuration before reading anything
	if !h.Gateway.Configured() {
		h.respondError(c, apperr.New(apperr.NotConfigured, i18n.MsgConverterNotConfigured))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, &apperr.Error{
				Kind:    apperr.InvalidInput,
				Status:  http.StatusRequestEntityTooLarge,
				Message: i18n.MsgZPLTooLarge,
			})
			return
		}
		h.respondError(c, apperr.Wrap(apperr.Internal, i18n.MsgInternalError, err))
		return
	}

	result, err := h.Gateway.Convert(c.Request.Context(), string(body))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
