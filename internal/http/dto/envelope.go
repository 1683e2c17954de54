package dto

// Envelope is the shape of every storefront JSON response.
type Envelope struct {
	Success       bool              `json:"success"`
	Message       string            `json:"message,omitempty"`
	Data          any               `json:"data,omitempty"`
	Error         string            `json:"error,omitempty"`
	Fields        map[string]string `json:"fields,omitempty"`
	Redirect      string            `json:"redirect,omitempty"`
	CorrelationID string            `json:"correlationId,omitempty"`
}
