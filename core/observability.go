package core

import "time"

// ThreadInfo is a point-in-time snapshot of a thread.
type ThreadInfo struct {
	ID         string    `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	ParentID   string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Main       bool      `json:"main,omitempty" yaml:"main,omitempty"`
	Status     string    `json:"status" yaml:"status"`
	Priority   int       `json:"priority" yaml:"priority"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
}

// ThreadExitRecord captures a finished thread.
type ThreadExitRecord struct {
	ThreadID      string        `yaml:"thread_id"`
	Name          string        `yaml:"name"`
	RuntimeName   string        `yaml:"runtime"`
	Status        Status        `yaml:"status"`
	FinalPriority int           `yaml:"final_priority"`
	CreatedAt     time.Time     `yaml:"created_at"`
	FinishedAt    time.Time     `yaml:"finished_at"`
	Duration      time.Duration `yaml:"duration"`
}

// RuntimeStats represents runtime observability state.
type RuntimeStats struct {
	Name     string
	Spawned  int64
	Alive    int
	Pending  int // deferred threads not yet started
	Exited   int64
	Aborted  int64
	Rejected int64 // priority assignments rejected

	// Priorities counts live and pending threads per priority value.
	Priorities map[int]int
}
