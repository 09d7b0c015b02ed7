package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/devadigapratham/zpl2pdf/api/models"
	"github.com/devadigapratham/zpl2pdf/web"
)

// Index serves the browser front end
func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.Index)
}

// Health reports which endpoints are configured
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.Health{
		Status:              "ok",
		ConverterConfigured: h.Gateway.Configured(),
		ProxyConfigured:     h.Proxy.Configured(),
	})
}
