package server

import (
	"encoding/json"
	"net/http"

	"github.com/moogar0880/problems"

	ferrors "github.com/matzehuels/flowcanvas/pkg/errors"
)

const problemMediaType = "application/problem+json"

// statusOf maps error codes to HTTP status codes.
func statusOf(code ferrors.Code) int {
	switch code {
	case ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidFormat,
		ferrors.ErrCodeInvalidID, ferrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case ferrors.ErrCodeNotFound:
		return http.StatusNotFound
	case ferrors.ErrCodeHistoryMisuse:
		return http.StatusConflict
	case ferrors.ErrCodeStructural, ferrors.ErrCodeConversion:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError writes err as a problem document. The problem type is the
// error code; internal errors hide their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = ferrors.Classify(err)
	code := ferrors.GetCode(err)
	status := statusOf(code)

	detail := ferrors.Detail(err)
	if !code.IsCallerFault() {
		detail = "internal error"
	}
	problem := problems.NewStatusProblem(status).
		WithInstance(r.URL.Path).
		WithType(string(code)).
		WithDetail(detail)

	w.Header().Set("Content-Type", problemMediaType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(problem)
}
