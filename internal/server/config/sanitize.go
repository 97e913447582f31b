package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if sanitized.Token.KeyHex != "" {
		sanitized.Token.KeyHex = maskSecret(sanitized.Token.KeyHex)
	}
	if sanitized.Token.Derive.Salt != "" {
		sanitized.Token.Derive.Salt = maskSecret(sanitized.Token.Derive.Salt)
	}
	if sanitized.Server.RESP.Password != "" {
		sanitized.Server.RESP.Password = maskSecret(sanitized.Server.RESP.Password)
	}
	if sanitized.Revocation.Redis.Password != "" {
		sanitized.Revocation.Redis.Password = maskSecret(sanitized.Revocation.Redis.Password)
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
