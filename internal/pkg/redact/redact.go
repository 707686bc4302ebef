// redact маскирует чувствительные значения перед записью в лог.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Email оставляет первые две руны локальной части и домен.
func Email(s string) string {
	local, domain, ok := strings.Cut(s, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***"
	}

	runes := []rune(local)
	if len(runes) > 2 {
		local = string(runes[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token возвращает короткий отпечаток токена: по нему можно сопоставить
// записи лога, но нельзя восстановить сам токен.
func Token(raw string) string {
	if raw == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(raw))
	return "sha256:" + hex.EncodeToString(sum[:6])
}

func Password() string { return "[REDACTED_PASSWORD]" }
