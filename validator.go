package lightnet

import "net/http"

// ValidateResponse classifies a raw transport response into the error
// taxonomy. It is a pure function: 2xx passes, 401 maps to Unauthorized,
// 408 and 504 map to Timeout, everything else becomes a Server error
// carrying the status and body. A missing response maps to InvalidResponse.
func ValidateResponse(resp *Response) *Error {
	if resp == nil {
		return newError(ErrorTypeInvalidResponse, "no response received")
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return newError(ErrorTypeUnauthorized, "authentication required")
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return newError(ErrorTypeTimeout, "server reported timeout")
	default:
		return &Error{
			Type:       ErrorTypeServer,
			Message:    "server returned error status",
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}
}
