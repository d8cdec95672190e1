package session

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gorilla/securecookie"
)

// Keys are the securecookie hash and block keys for the session cookie.
type Keys struct {
	Auth []byte
	Enc  []byte
}

// DecodeKeys parses base64 keys. When both are empty it generates random
// keys and reports generated=true; sessions then do not survive a restart.
func DecodeKeys(authB64, encB64 string) (keys Keys, generated bool, err error) {
	authB64, encB64 = strings.TrimSpace(authB64), strings.TrimSpace(encB64)
	if authB64 == "" && encB64 == "" {
		return Keys{
			Auth: securecookie.GenerateRandomKey(64),
			Enc:  securecookie.GenerateRandomKey(32),
		}, true, nil
	}
	if authB64 == "" {
		return Keys{}, false, fmt.Errorf("session: SESSION_AUTH_KEY is required when SESSION_ENC_KEY is set")
	}
	if keys.Auth, err = decodeBase64(authB64); err != nil {
		return Keys{}, false, fmt.Errorf("session: decode auth key: %w", err)
	}
	if len(keys.Auth) < 32 {
		return Keys{}, false, fmt.Errorf("session: auth key must be at least 32 bytes, got %d", len(keys.Auth))
	}
	if encB64 != "" {
		if keys.Enc, err = decodeBase64(encB64); err != nil {
			return Keys{}, false, fmt.Errorf("session: decode enc key: %w", err)
		}
		switch len(keys.Enc) {
		case 16, 24, 32:
		default:
			return Keys{}, false, fmt.Errorf("session: enc key must be 16, 24 or 32 bytes, got %d", len(keys.Enc))
		}
	}
	return keys, false, nil
}

// GenerateKeys returns a fresh base64 auth/enc key pair suitable for the environment.
func GenerateKeys() (authB64, encB64 string, err error) {
	auth := securecookie.GenerateRandomKey(64)
	enc := securecookie.GenerateRandomKey(32)
	if auth == nil || enc == nil {
		return "", "", fmt.Errorf("session: could not read random bytes")
	}
	return base64.URLEncoding.EncodeToString(auth), base64.URLEncoding.EncodeToString(enc), nil
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
