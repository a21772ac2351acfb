package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DownloadSigner mints HMAC tokens that authorize time-limited export
// downloads without a session, so a completed export link can be handed
// to tools that carry no JWT.
type DownloadSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewDownloadSigner constructs a signer with the provided secret and link TTL.
func NewDownloadSigner(secret string, ttl time.Duration) *DownloadSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &DownloadSigner{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Sign returns a token referencing the export id.
func (s *DownloadSigner) Sign(exportID string) (string, time.Time, error) {
	if exportID == "" {
		return "", time.Time{}, fmt.Errorf("export id required")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := time.Now().Add(s.ttl)
	token := strings.Join([]string{exportID, strconv.FormatInt(expiresAt.Unix(), 10), s.signature(exportID, expiresAt.Unix())}, ".")
	return token, expiresAt, nil
}

// Verify validates a token and returns the export id it references.
func (s *DownloadSigner) Verify(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid token format")
	}
	exportID, ts, signature := parts[0], parts[1], parts[2]

	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid token timestamp")
	}
	if !hmac.Equal([]byte(s.signature(exportID, expUnix)), []byte(signature)) {
		return "", fmt.Errorf("invalid token signature")
	}
	if time.Now().After(time.Unix(expUnix, 0)) {
		return "", fmt.Errorf("download link expired")
	}
	return exportID, nil
}

func (s *DownloadSigner) signature(exportID string, expUnix int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%d", exportID, expUnix)
	return hex.EncodeToString(mac.Sum(nil))
}
