package middlewares

import "context"

type ctxKey string

const (
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
	// ctxClaimsKey guarda las claims del token de admin
	ctxClaimsKey ctxKey = "admin_claims"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithClaims inyecta las claims de admin en el contexto.
func WithClaims(ctx context.Context, cl *AdminClaims) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, cl)
}

// GetClaims obtiene las claims de admin. Retorna nil si no hubo autenticación.
func GetClaims(ctx context.Context) *AdminClaims {
	cl, _ := ctx.Value(ctxClaimsKey).(*AdminClaims)
	return cl
}
