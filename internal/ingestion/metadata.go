package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes where a job description came from.
type Metadata struct {
	URL       string    `json:"url,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	Platform  string    `json:"platform,omitempty"`
	Hash      string    `json:"hash"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMetadata records the content hash and the current UTC time.
func NewMetadata(content string, url string) *Metadata {
	return &Metadata{
		URL:       url,
		Hash:      ContentHash(content),
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}
}

// ContentHash returns the hex SHA-256 digest of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
