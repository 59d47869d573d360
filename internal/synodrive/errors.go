package synodrive

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
)

var (
	ErrNoServerURL = errors.New("synodrive: server url missing")
	ErrNotLoggedIn = errors.New("synodrive: not logged in")
)

// DSM API error codes. The webapi returns HTTP 200 with
// `{"success": false, "error": {"code": N}}` for all of these.
const (
	CodeUnknownError     = 100
	CodeInvalidParameter = 101
	CodeUnknownAPI       = 102
	CodeUnknownMethod    = 103
	CodeUnsupportedVer   = 104
	CodeNoPermission     = 105
	CodeSessionTimeout   = 106
	CodeDuplicateLogin   = 107
	CodeInvalidSession   = 119
	CodeBadCredentials   = 400
	CodeAccountDisabled  = 401
	CodeAccessDenied     = 402
	CodeOTPRequired      = 403
	CodeOTPIncorrect     = 404
)

var codeText = map[int]string{
	CodeUnknownError:     "unknown error",
	CodeInvalidParameter: "invalid parameter",
	CodeUnknownAPI:       "api does not exist",
	CodeUnknownMethod:    "method does not exist",
	CodeUnsupportedVer:   "api version not supported",
	CodeNoPermission:     "insufficient privilege",
	CodeSessionTimeout:   "session timed out",
	CodeDuplicateLogin:   "session interrupted by duplicate login",
	CodeInvalidSession:   "invalid session",
	CodeBadCredentials:   "invalid credentials",
	CodeAccountDisabled:  "account disabled",
	CodeAccessDenied:     "permission denied",
	CodeOTPRequired:      "2-step verification code required",
	CodeOTPIncorrect:     "2-step verification code incorrect",
}

// APIError is a webapi call that came back with success=false.
type APIError struct {
	Op   string
	Code int
}

func (e *APIError) Error() string {
	text, ok := codeText[e.Code]
	if !ok {
		text = "unrecognized error code"
	}
	return fmt.Sprintf("synodrive: %s: %s (code %d)", e.Op, text, e.Code)
}

type apiErrorBody struct {
	Code int `json:"code"`
}

// apiEnvelope is the wire wrapper around every webapi response.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Error   *apiErrorBody   `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// checkResponse classifies the three failure layers of a webapi call:
// transport errors, HTTP-level errors, and the in-band DSM error envelope.
func checkResponse(res *req.Response, requestErr error, op string, env *apiEnvelope) error {
	if requestErr != nil {
		return fmt.Errorf("synodrive: %s: http request error: %w", op, requestErr)
	}

	if res.IsErrorState() {
		return fmt.Errorf("synodrive: %s: http status %d", op, res.GetStatusCode())
	}

	if !env.Success {
		code := CodeUnknownError
		if env.Error != nil {
			code = env.Error.Code
		}
		return &APIError{Op: op, Code: code}
	}

	return nil
}
