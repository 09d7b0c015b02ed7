package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devadigapratham/zpl2pdf/pdfproxy"
)

// PDFProxy relays the PDF named by the url query parameter
func (h *Handler) PDFProxy(c *gin.Context) {
	data, err := h.Proxy.Fetch(c.Request.Context(), c.Query("url"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", pdfproxy.ContentDisposition)
	c.Header("Cache-Control", pdfproxy.CacheControl)
	c.Data(http.StatusOK, pdfproxy.ContentType, data)
}
