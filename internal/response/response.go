// Package response defines the JSON envelope every API route answers with.
package response

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

type APIResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *AppError      `json:"error,omitempty"`
}

func Success(data any, meta map[string]any) APIResponse {
	return APIResponse{Data: data, Meta: meta}
}

func Fail(status int, msg string) APIResponse {
	return APIResponse{Error: &AppError{Code: status, Message: msg}}
}

func BadRequest(msg string) APIResponse    { return Fail(400, msg) }
func Unauthorized(msg string) APIResponse  { return Fail(401, msg) }
func NotFound(msg string) APIResponse      { return Fail(404, msg) }
func InternalError(msg string) APIResponse { return Fail(500, msg) }
