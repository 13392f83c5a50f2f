package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/utafrali/variantcatalog/pkg/httputil"
	"github.com/utafrali/variantcatalog/pkg/validator"
)

// maxBodyBytes limits request bodies to 1MB.
const maxBodyBytes = 1 << 20

// decodeBody decodes and validates the JSON body into dst. On failure it
// writes the error response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return true
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		httputil.WriteError(w, r, err, nil)
		return false
	}
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
	})
	return false
}

func writeInvalidParam(w http.ResponseWriter, message string) {
	httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
		Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: message},
	})
}

// splitList splits a comma separated query value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
