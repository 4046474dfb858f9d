package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the generic failure envelope: {"status":"ERROR","errors":[...]}.
type ErrorBody struct {
	Status string `json:"status"`
	Errors []any  `json:"errors"`
}

// NotFoundBody is the typed-absence envelope: {"error_code":...,"message":...}.
type NotFoundBody struct {
	Status    string `json:"status,omitempty"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			// best-effort error response; avoid writing partial JSON
			http.Error(w, `{"status":"ERROR","errors":["encode_error"]}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		// nothing we can do at this point
		_ = err
	}
}

func JSONError(w http.ResponseWriter, status int, errs ...any) {
	JSON(w, status, ErrorBody{Status: "ERROR", Errors: errs})
}

func JSONNotFound(w http.ResponseWriter, code, message string) {
	JSON(w, http.StatusNotFound, NotFoundBody{ErrorCode: code, Message: message})
}
