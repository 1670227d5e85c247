package emailtemplate

import (
	"errors"
	"fmt"

	"github.com/dropDatabas3/i18nmail/internal/domain/repository"
)

// Kind clasifica los errores del manager.
type Kind int

const (
	// KindClient: input inválido del caller (nombre, locale, campos vacíos).
	KindClient Kind = iota + 1
	// KindAlreadyExists: el tipo de template ya existe para el tenant.
	KindAlreadyExists
	// KindNotFound: el template no existe ni en el locale por defecto.
	KindNotFound
	// KindServer: falla del registry subyacente.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindAlreadyExists:
		return "already_exists"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Códigos de error expuestos a clientes.
const (
	CodeTemplateTypeAlreadyExists = "18001"
	CodeTemplateTypeNotFound      = "18002"
)

// Error es el error tipado de todas las operaciones del manager.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("emailtemplate: %s: %v", e.Message, e.Err)
	}
	return "emailtemplate: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func clientError(format string, args ...any) *Error {
	return &Error{Kind: KindClient, Message: fmt.Sprintf(format, args...)}
}

// serverError envuelve una falla del store. Si el store rechazó la key por input
// inválido (repository.ErrInvalidInput) el error es del cliente.
func serverError(cause error, format string, args ...any) *Error {
	kind := KindServer
	if repository.IsInvalidInput(cause) {
		kind = KindClient
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf retorna el Kind de err, o 0 si no es un *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsClient(err error) bool        { return KindOf(err) == KindClient }
func IsAlreadyExists(err error) bool { return KindOf(err) == KindAlreadyExists }
func IsNotFound(err error) bool      { return KindOf(err) == KindNotFound }
func IsServer(err error) bool        { return KindOf(err) == KindServer }
