package auth

import "context"

// AuthVerifier valida un bearer token y devuelve la identidad del usuario.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
