package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"time"
)

// ClientError is one entry of a browser error batch.
type ClientError struct {
	Type      string `json:"type"` // console-error|react-error|hydration-error|network-error|...
	Message   string `json:"message"`
	Stack     string `json:"stack,omitempty"`
	URL       string `json:"url,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Key identifies an entry for deduplication: same message at the same timestamp.
func (e ClientError) Key() string {
	sum := sha1.Sum([]byte(e.Message + "|" + e.Timestamp))
	return hex.EncodeToString(sum[:])
}

type ErrorBatch struct {
	Errors    []ClientError `json:"errors"`
	SessionID string        `json:"sessionId"`
	Timestamp string        `json:"timestamp"`
	UserAgent string        `json:"-"`
	Referer   string        `json:"-"`
}

type CriticalError struct {
	Type     string      `json:"type"`
	Error    ClientError `json:"error"`
	Priority string      `json:"priority"`
	AutoFix  *FixHint    `json:"autoFix,omitempty"`
}

type FixHint struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Solution    string `json:"solution"`
	Priority    string `json:"priority"`
}

type Recommendation struct {
	Type     string `json:"type"`
	Priority string `json:"priority"`
	Message  string `json:"message"`
	Action   string `json:"action"`
}

type ErrorAnalysis struct {
	Timestamp       time.Time        `json:"timestamp"`
	TotalErrors     int              `json:"totalErrors"`
	Accepted        int              `json:"accepted"`
	Duplicates      int              `json:"duplicates"`
	ErrorTypes      map[string]int   `json:"errorTypes"`
	CriticalErrors  []CriticalError  `json:"criticalErrors"`
	AutoFixes       []FixHint        `json:"autoFixes"`
	Recommendations []Recommendation `json:"recommendations"`
}
