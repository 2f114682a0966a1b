package supabase

import (
	"fmt"

	"github.com/golang-jwt/jwt"
)

// UserIDFromToken reads the sub claim of a Supabase access token. The signature is not
// checked here; the server validates every request made with the token.
func UserIDFromToken(token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("empty access token")
	}

	parsed, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("invalid JWT format")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid JWT claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("missing sub in token")
	}
	return sub, nil
}
