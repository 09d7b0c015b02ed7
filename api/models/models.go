// api/models/models.go
package models

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health reports which endpoints are enabled
type Health struct {
	Status              string `json:"status"`
	ConverterConfigured bool   `json:"converterConfigured"`
	ProxyConfigured     bool   `json:"proxyConfigured"`
}
