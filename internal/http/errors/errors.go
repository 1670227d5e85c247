package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/i18nmail/internal/email"
	"github.com/dropDatabas3/i18nmail/internal/emailtemplate"
	"github.com/dropDatabas3/i18nmail/internal/observability/logger"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError convierte un error de cualquier capa en un AppError.
//   - *AppError: tal cual
//   - *emailtemplate.Error: según Kind (400/409/404/500), con el código de dominio si tiene
//   - errores de entrega SMTP: 502 (503 si no hay sender)
//   - resto: 500
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var tErr *emailtemplate.Error
	if stderrors.As(err, &tErr) {
		return FromTemplateError(tErr)
	}

	switch {
	case stderrors.Is(err, email.ErrSenderNotConfigured):
		return ErrServiceUnavailable.WithDetail("smtp not configured").WithCause(err)
	case stderrors.Is(err, email.ErrInvalidRecipient):
		return ErrInvalidParameter.WithDetail(err.Error()).WithCause(err)
	}
	if se, ok := email.AsSendError(err); ok {
		return ErrBadGateway.WithDetail(se.Diag.Code).WithCause(err)
	}
	return ErrInternalServerError.WithCause(err)
}

// FromTemplateError mapea los errores del manager de templates.
func FromTemplateError(err *emailtemplate.Error) *AppError {
	var base *AppError
	switch err.Kind {
	case emailtemplate.KindClient:
		base = ErrBadRequest
	case emailtemplate.KindAlreadyExists:
		base = ErrAlreadyExists
	case emailtemplate.KindNotFound:
		base = ErrNotFound
	default:
		// El mensaje de los errores de servidor no se expone.
		return ErrInternalServerError.WithCause(err)
	}
	out := base.WithDetail(err.Message).WithCause(err)
	if err.Code != "" {
		out.Code = err.Code
	}
	return out
}

// WriteError escribe la respuesta JSON de error. Los 5xx se loguean con la causa.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := FromError(err)

	if appErr.HTTPStatus >= 500 && r != nil {
		logger.From(r.Context()).Error("request failed",
			logger.Layer("http"),
			logger.String("code", appErr.Code),
			logger.Err(appErr.Err),
		)
	}

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
