package ratelimit

import (
	"context"
	"sync"
	"time"
)

type MemoryLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

type window struct {
	count     int
	lastReset time.Time
}

func NewMemoryLimiter(limit int, every time.Duration) *MemoryLimiter {
	rl := &MemoryLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  every,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	go rl.cleanup(10 * time.Minute)
	return rl
}

func (rl *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, exists := rl.clients[key]

	if !exists {
		rl.clients[key] = &window{count: 1, lastReset: now}
		return true, nil
	}

	if now.Sub(w.lastReset) > rl.window {
		w.count = 1
		w.lastReset = now
		return true, nil
	}

	w.count++
	return w.count <= rl.limit, nil
}

// Close stops the cleanup goroutine.
func (rl *MemoryLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *MemoryLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *MemoryLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, w := range rl.clients {
		if now.Sub(w.lastReset) > rl.window*2 {
			delete(rl.clients, key)
		}
	}
}
