// Package captcha handles challenge detection on search result pages and
// the handoff flow that lets an operator solve a challenge while the
// scrape run stays suspended.
package captcha

import (
	"sync"
	"time"
)

// SolvedKeys remembers query keys (category|location) whose challenge was
// recently solved. A remembered key is a hint that the next run for the
// same query can stay headless; entries expire after the configured TTL.
type SolvedKeys struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

func NewSolvedKeys(ttl time.Duration) *SolvedKeys {
	s := &SolvedKeys{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Mark records that a challenge for key was just solved.
func (s *SolvedKeys) Mark(key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.entries[key] = time.Now()
	s.mu.Unlock()
}

// Seen reports whether key was solved within the TTL.
func (s *SolvedKeys) Seen(key string) bool {
	s.mu.RLock()
	at, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return time.Since(at) < s.ttl
}

func (s *SolvedKeys) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (s *SolvedKeys) Stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *SolvedKeys) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.ttl)
			s.mu.Lock()
			for key, at := range s.entries {
				if at.Before(cutoff) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
