// Package logger sets up structured logging for the uninstall scheduler and
// keeps an in-memory ring buffer of recent entries for the operator HTTP
// surface, in the idiom of determined-ai/determined's
// master/pkg/logger.LogBuffer.
package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func computeSlice(startID, endID, limit, totalEntries, capacity int) (int, int) {
	if endID < -1 || startID < -1 || limit < -1 {
		return 0, 0
	}
	if endID == -1 {
		endID = totalEntries
	}
	if limit == -1 {
		limit = capacity
	}

	selectTail := startID == -1

	startID = maxInt(startID, maxInt(0, totalEntries-capacity))
	endID = minInt(endID, totalEntries)
	if startID >= endID {
		return 0, 0
	}
	limit = minInt(limit, endID-startID)

	if selectTail {
		startID = endID - limit
	}
	return startID % capacity, limit
}

func messageAndFields(entry *logrus.Entry) string {
	if len(entry.Data) == 0 {
		return entry.Message
	}
	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	fields := make([]string, 0, len(keys))
	for _, key := range keys {
		fields = append(fields, fmt.Sprintf("%s=%q", key, fmt.Sprintf("%v", entry.Data[key])))
	}
	return entry.Message + "  " + strings.Join(fields, " ")
}

// Entry is one captured log line.
type Entry struct {
	ID      int          `json:"id"`
	Message string       `json:"message"`
	Time    time.Time    `json:"time"`
	Level   logrus.Level `json:"level"`
}

// Buffer is a fixed-capacity in-memory ring buffer of log entries, wired in
// as a logrus.Hook so the operator HTTP surface can serve recent log
// history without a separate log-shipping pipeline.
type Buffer struct {
	lock         sync.RWMutex
	buffer       []*Entry
	totalEntries int
}

// NewBuffer creates a ring buffer holding up to capacity entries.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{buffer: make([]*Entry, capacity)}
}

func (b *Buffer) write(entry *Entry) {
	b.lock.Lock()
	defer b.lock.Unlock()
	entry.ID = b.totalEntries
	b.buffer[b.totalEntries%len(b.buffer)] = entry
	b.totalEntries++
}

// Entries retrieves a snapshot of entries in [startID, endID), capped at
// limit. startID == -1 means no lower bound, endID == -1 means no upper
// bound, limit == -1 means no limit.
func (b *Buffer) Entries(startID, endID, limit int) []*Entry {
	b.lock.RLock()
	defer b.lock.RUnlock()

	startIndex, count := computeSlice(startID, endID, limit, b.totalEntries, len(b.buffer))
	if count <= 0 {
		return nil
	}
	entries := make([]*Entry, count)
	copied := copy(entries, b.buffer[startIndex:])
	copy(entries[copied:], b.buffer)
	return entries
}

// Len returns the total number of entries ever written.
func (b *Buffer) Len() int {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.totalEntries
}

// Fire implements logrus.Hook.
func (b *Buffer) Fire(entry *logrus.Entry) error {
	b.write(&Entry{Message: messageAndFields(entry), Time: entry.Time, Level: entry.Level})
	return nil
}

// Levels implements logrus.Hook.
func (b *Buffer) Levels() []logrus.Level {
	return logrus.AllLevels
}
