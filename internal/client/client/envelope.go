package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Meta is the optional metadata block of a response envelope.
type Meta struct {
	TraceID     string `json:"traceId,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  Meta            `json:"meta"`
	Error *apiError       `json:"error"`
}

// Result is a decoded success envelope.
type Result[T any] struct {
	Data T
	Meta Meta
}

// decode turns a response into Result[T] or an error. Non-2xx responses
// become *ServerError; a 2xx body without data is ErrUnexpectedResponse.
func decode[T any](resp *http.Response) (Result[T], error) {
	var res Result[T]

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, fmt.Errorf("%w: failed to read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return res, serverError(resp, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return res, fmt.Errorf("%w: envelope has no data", ErrUnexpectedResponse)
	}
	if err := json.Unmarshal(env.Data, &res.Data); err != nil {
		return res, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	res.Meta = env.Meta
	return res, nil
}

// expectNoContent accepts any 2xx status and ignores the body.
func expectNoContent(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, _ := io.ReadAll(resp.Body)
	return serverError(resp, body)
}

func serverError(resp *http.Response, body []byte) *ServerError {
	se := &ServerError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		se.Code = env.Error.Code
		se.Fields = env.Error.Fields
		if env.Error.Message != "" {
			se.Message = env.Error.Message
		}
	}
	return se
}
