package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/CUP-SyncService/internal/api/handlers"
)

const (
	headerSignature = "X-CUP-Signature"
	headerTimestamp = "X-CUP-Timestamp"
	headerAPIKey    = "X-CUP-API-Key"

	signaturePrefix = "sha256="

	// Подписи старше пяти минут отвергаются для защиты от replay
	maxTimestampSkew = 5 * time.Minute
)

const msgUnauthorized = "неверная подпись или ключ"

// Auth проверяет подлинность входящего webhook'а.
//
// Основной механизм: HMAC-SHA256 от строки "{timestamp}.{body}" в
// X-CUP-Signature с префиксом sha256= и unix-ms меткой в X-CUP-Timestamp.
// Запасной: значение X-CUP-API-Key, совпадающее с секретом.
// Без того и другого запрос отклоняется.
type Auth struct {
	secret string
	logger Logger
	now    func() time.Time
}

// NewAuth создает middleware аутентификации webhook'ов
func NewAuth(secret string, logger Logger) *Auth {
	return &Auth{
		secret: secret,
		logger: logger,
		now:    time.Now,
	}
}

// Middleware возвращает http-обертку проверки подлинности
func (a *Auth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if signature := r.Header.Get(headerSignature); signature != "" {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				a.logger.Warn("Auth - Failed to read request body: %v", err)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !a.verifySignature(signature, r.Header.Get(headerTimestamp), body) {
				a.logger.Warn("Auth - Invalid signature from %s", r.RemoteAddr)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if apiKey := r.Header.Get(headerAPIKey); apiKey != "" {
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(a.secret)) != 1 {
				a.logger.Warn("Auth - Invalid api key from %s", r.RemoteAddr)
				handlers.RespondUnauthorized(w, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		a.logger.Warn("Auth - No credentials from %s", r.RemoteAddr)
		handlers.RespondUnauthorized(w, msgUnauthorized)
	})
}

func (a *Auth) verifySignature(signature, timestamp string, body []byte) bool {
	if len(signature) <= len(signaturePrefix) || signature[:len(signaturePrefix)] != signaturePrefix {
		return false
	}
	if timestamp == "" {
		return false
	}

	ms, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	skew := a.now().Sub(time.UnixMilli(ms))
	if skew < -maxTimestampSkew || skew > maxTimestampSkew {
		return false
	}

	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)

	provided, err := hex.DecodeString(signature[len(signaturePrefix):])
	if err != nil {
		return false
	}

	return hmac.Equal(provided, mac.Sum(nil))
}
