package errors

import (
	"fmt"
	"net/http"
)

// AppError es el error que viaja hasta el borde HTTP: código estable, mensaje
// para el cliente y status. Err queda solo para logs.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New crea un AppError. Los predefinidos de abajo no se modifican: usar
// WithDetail/WithCause, que devuelven copias.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// WithDetail copia el error agregando un detalle visible para el cliente.
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause copia el error guardando la causa interna.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Request
var (
	ErrBadRequest           = New(http.StatusBadRequest, "BAD_REQUEST", "Los datos enviados no son válidos.")
	ErrInvalidJSON          = New(http.StatusBadRequest, "INVALID_JSON", "El body no es un JSON válido.")
	ErrInvalidParameter     = New(http.StatusBadRequest, "INVALID_PARAMETER", "Un parámetro de la URL o del body es inválido.")
	ErrUnsupportedMediaType = New(http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type debe ser application/json.")
	ErrBodyTooLarge         = New(http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "El body supera el tamaño máximo aceptado.")
)

// Auth del admin API
var (
	ErrUnauthorized = New(http.StatusUnauthorized, "UNAUTHORIZED", "Falta el bearer token de administración.")
	ErrTokenInvalid = New(http.StatusUnauthorized, "TOKEN_INVALID", "El token de administración es inválido o expiró.")
	ErrForbidden    = New(http.StatusForbidden, "FORBIDDEN", "El token no habilita este tenant.")
)

// Recursos y rutas
var (
	ErrNotFound         = New(http.StatusNotFound, "NOT_FOUND", "El template pedido no existe.")
	ErrRouteNotFound    = New(http.StatusNotFound, "ROUTE_NOT_FOUND", "La ruta no existe.")
	ErrMethodNotAllowed = New(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Método no permitido en esta ruta.")
	ErrAlreadyExists    = New(http.StatusConflict, "ALREADY_EXISTS", "El tipo de template ya existe.")
)

// Servidor y dependencias
var (
	ErrInternalServerError = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Error interno del servidor.")
	ErrServiceUnavailable  = New(http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Servicio no disponible.")
	ErrBadGateway          = New(http.StatusBadGateway, "BAD_GATEWAY", "El servidor de correo rechazó el envío.")
)
