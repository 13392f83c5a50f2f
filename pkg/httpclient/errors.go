package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/variantcatalog/pkg/errors"
)

// downstreamError matches the error envelope written by platform services.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// turns it into an error carrying the matching AppError semantics.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	message := string(body)
	code := ""
	var env downstreamError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: qualified, Status: http.StatusNotFound, Err: apperrors.ErrNotFound}
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case resp.StatusCode == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return &apperrors.AppError{Code: "SERVICE_UNAVAILABLE", Message: qualified, Status: http.StatusServiceUnavailable, Err: apperrors.ErrServiceUnavail}
	case resp.StatusCode >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", service, resp.StatusCode, code, message)
	default:
		return &apperrors.AppError{Code: code, Message: qualified, Status: resp.StatusCode}
	}
}
