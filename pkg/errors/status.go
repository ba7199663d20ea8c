package errors

import "net/http"

// CodeFromStatus maps an upstream HTTP status to the closest code.
func CodeFromStatus(status int) Code {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return CodeValidation
	case status == http.StatusUnauthorized:
		return CodeUnauthorized
	case status == http.StatusForbidden:
		return CodeForbidden
	case status == http.StatusNotFound:
		return CodeNotFound
	case status == http.StatusConflict:
		return CodeConflict
	case status == http.StatusTooManyRequests:
		return CodeRateLimit
	case status == http.StatusGatewayTimeout, status == http.StatusRequestTimeout:
		return CodeTimeout
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable:
		return CodeDependency
	case status >= 400 && status < 500:
		return CodeValidation
	default:
		return CodeInternal
	}
}
