// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Success: false, Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Success bool              `json:"success"`
	Detail  string            `json:"detail"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Success: false, Detail: "Error de validacion", Fields: fields}
}

// StockError extends the envelope with per-product availability detail so
// clients can show exactly which lines could not be covered.
type StockError struct {
	Success   bool        `json:"success"`
	Detail    string      `json:"detail"`
	Faltantes interface{} `json:"faltantes"`
}

func NewStock(msg string, faltantes interface{}) *StockError {
	return &StockError{Success: false, Detail: msg, Faltantes: faltantes}
}
