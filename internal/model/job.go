package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Job is the unified representation of a posting from any source.
// Adapters construct it fully populated; nothing downstream mutates it.
type Job struct {
	ID        string     // deduplication identity, stable across runs
	Title     string     // job title, required
	Company   string     // company name, may be empty
	Location  string     // location text as provided by the source, trimmed
	URL       string     // direct link to the posting, required
	Source    string     // adapter name that produced the record
	PostedAt  *time.Time // nullable (not all sources provide this)
	FirstSeen time.Time  // our clock (set on first encounter)
}

// Valid reports whether the record carries every required field.
// Adapters drop invalid records instead of passing them downstream.
func (j Job) Valid() bool {
	return strings.TrimSpace(j.Title) != "" && strings.TrimSpace(j.URL) != ""
}

// SourceID builds an identity from a source-native id, e.g. "greenhouse:4012345".
func SourceID(source, nativeID string) string {
	return source + ":" + nativeID
}

// HashID builds an identity for sources without native ids by hashing the
// fields that distinguish one posting from another. Title alone is not enough
// (two companies post identical titles), so company and URL are mixed in.
func HashID(source, title, company, url string) string {
	h := sha256.Sum256([]byte(title + "\x00" + company + "\x00" + url))
	return source + ":" + hex.EncodeToString(h[:8])
}

// SourceAdapter fetches postings from one external source and normalizes them.
// On failure it returns whatever partial results it accumulated alongside the
// error; it never panics out of Fetch.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]Job, error)
}

// SeenStore tracks which job identities have been delivered, for deduplication
// across runs. State must survive process restarts.
type SeenStore interface {
	HasSeen(id string) (bool, error)
	MarkSeen(id string, at time.Time) error
	Prune(olderThan time.Duration) error
	Close() error
}

// Notifier delivers a batch of new jobs to the outbound channel.
type Notifier interface {
	Notify(jobs []Job) error
}
