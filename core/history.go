package core

import (
	"reflect"
	"runtime"
	"strings"
	"sync"
)

const defaultHistoryCapacity = 100

type exitHistory struct {
	mu    sync.Mutex
	items []ThreadExitRecord
	head  int
	count int
}

func newExitHistory(capacity int) *exitHistory {
	if capacity < 1 {
		capacity = defaultHistoryCapacity
	}
	return &exitHistory{items: make([]ThreadExitRecord, capacity)}
}

func (h *exitHistory) Add(record ThreadExitRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.items[h.head] = record
	h.head = (h.head + 1) % len(h.items)
	if h.count < len(h.items) {
		h.count++
	}
}

// Recent returns up to limit records, newest first.
func (h *exitHistory) Recent(limit int) []ThreadExitRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return nil
	}

	if limit <= 0 || limit > h.count {
		limit = h.count
	}

	out := make([]ThreadExitRecord, 0, limit)
	for i := range limit {
		idx := (h.head - 1 - i + len(h.items)) % len(h.items)
		out = append(out, h.items[idx])
	}
	return out
}

// resolveBodyName derives a default thread name from the body's function name.
func resolveBodyName(body Body) string {
	if body == nil {
		return "anonymous"
	}

	pc := reflect.ValueOf(body).Pointer()
	if pc == 0 {
		return "anonymous"
	}

	fn := runtime.FuncForPC(pc)
	if fn == nil || fn.Name() == "" {
		return "anonymous"
	}

	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
