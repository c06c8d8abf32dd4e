package scheduler

import "time"

// StatusResponse is the scheduler status snapshot
type StatusResponse struct {
	Running       bool       `json:"running"`
	Ticking       bool       `json:"ticking"`
	LastTickTime  *time.Time `json:"last_tick_time"`
	NextTickTime  *time.Time `json:"next_tick_time"`
	LastError     *string    `json:"last_error"`
	PollInterval  string     `json:"poll_interval"`
	MaxConcurrent int        `json:"max_concurrent"`
	InFlight      int        `json:"in_flight"`
	TotalTicks    int64      `json:"total_ticks"`
}

// TriggerResponse reports whether a manual trigger started a tick
type TriggerResponse struct {
	Triggered bool   `json:"triggered"`
	Message   string `json:"message"`
}

// ClearCacheResponse reports how many in-flight ids were dropped
type ClearCacheResponse struct {
	Cleared int `json:"cleared"`
}
