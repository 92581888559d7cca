// Package response define el envelope uniforme que devuelven todos los endpoints.
//
// Un Result es Success (2xx, con data opcional) o Failure (>= 400, con errors
// opcional). Los constructores fijan success y statusCode juntos, de modo que
// no pueden contradecirse. Ambas variantes serializan la misma forma JSON:
//
//	{"success":true,"statusCode":200,"message":"...","data":{...},"errors":null,"timestamp":"..."}
package response

import (
	"encoding/json"
	"net/http"
	"time"
)

// Result es la union cerrada Success | Failure.
type Result interface {
	json.Marshaler
	StatusCode() int
	IsSuccess() bool
	Message() string
	Timestamp() time.Time
	isResult()
}

type envelope struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Data       any       `json:"data"`
	Errors     any       `json:"errors"`
	Timestamp  time.Time `json:"timestamp"`
}

var now = func() time.Time { return time.Now().UTC() }

// Success transporta el payload de una operacion exitosa.
type Success[T any] struct {
	status    int
	message   string
	data      T
	hasData   bool
	timestamp time.Time
}

func (s Success[T]) StatusCode() int      { return s.status }
func (s Success[T]) IsSuccess() bool      { return true }
func (s Success[T]) Message() string      { return s.message }
func (s Success[T]) Timestamp() time.Time { return s.timestamp }
func (s Success[T]) isResult()            {}

// Data devuelve el payload y si fue provisto.
func (s Success[T]) Data() (T, bool) { return s.data, s.hasData }

func (s Success[T]) MarshalJSON() ([]byte, error) {
	env := envelope{
		Success:    true,
		StatusCode: s.status,
		Message:    s.message,
		Timestamp:  s.timestamp,
	}
	if s.hasData {
		env.Data = s.data
	}
	return json.Marshal(env)
}

// Failure transporta el status de error y el detalle diagnostico.
type Failure struct {
	status    int
	message   string
	errors    any
	timestamp time.Time
}

func (f Failure) StatusCode() int      { return f.status }
func (f Failure) IsSuccess() bool      { return false }
func (f Failure) Message() string      { return f.message }
func (f Failure) Timestamp() time.Time { return f.timestamp }
func (f Failure) Errors() any          { return f.errors }
func (f Failure) isResult()            {}

func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelope{
		Success:    false,
		StatusCode: f.status,
		Message:    f.message,
		Errors:     f.errors,
		Timestamp:  f.timestamp,
	})
}

func success[T any](status int, message string, data T, hasData bool) Success[T] {
	return Success[T]{status: status, message: message, data: data, hasData: hasData, timestamp: now()}
}

func failure(status int, message string, errors any) Failure {
	return Failure{status: status, message: message, errors: errors, timestamp: now()}
}

func Ok[T any](message string, data T) Success[T] {
	return success(http.StatusOK, message, data, true)
}

func CreatedAt[T any](message string, data T) Success[T] {
	return success(http.StatusCreated, message, data, true)
}

func NoContent(message string) Success[any] {
	if message == "" {
		message = "Operation completed successfully"
	}
	return success[any](http.StatusNoContent, message, nil, false)
}

// BadRequest acepta errors nil cuando no hay detalle.
func BadRequest(message string, errors any) Failure {
	return failure(http.StatusBadRequest, message, errors)
}

func Conflict(message string) Failure {
	return failure(http.StatusConflict, message, nil)
}

func NotFound(message string) Failure {
	if message == "" {
		message = "Resource not found"
	}
	return failure(http.StatusNotFound, message, nil)
}

// Error construye un fallo con status arbitrario. Un status fuera de 400-599
// se convierte en 500 para no romper la relacion success/statusCode.
func Error(statusCode int, message string, errors any) Failure {
	if statusCode < http.StatusBadRequest || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}
	return failure(statusCode, message, errors)
}
