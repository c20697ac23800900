package parser

import (
	"sync"

	"github.com/dvloznov/expense-extractor/internal/domain"
)

// Status is the advisory "in progress" signal of a parse call. It is safe
// to read from another goroutine while the call runs.
type Status struct {
	mu         sync.RWMutex
	inProgress bool
	message    string
	history    []string
}

// StatusSnapshot is a point-in-time copy of a Status.
type StatusSnapshot struct {
	InProgress bool   `json:"in_progress"`
	Message    string `json:"message,omitempty"`
}

func (s *Status) set(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inProgress = true
	s.message = message
	s.history = append(s.history, message)
}

func (s *Status) clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inProgress = false
	s.message = ""
}

// Snapshot returns the current state.
func (s *Status) Snapshot() StatusSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return StatusSnapshot{InProgress: s.inProgress, Message: s.message}
}

// History returns every message set so far, in order.
func (s *Status) History() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.history))
	copy(out, s.history)
	return out
}

// messages are the human-readable status lines for one source.
type messages struct {
	reading   string
	analyzing string
	ai        string
}

const aiMessage = "Using AI to extract transactions..."

var sourceMessages = map[domain.Source]messages{
	domain.SourceBank:       {"Reading bank statement...", "Analyzing bank transactions...", aiMessage},
	domain.SourceCreditCard: {"Reading credit card statement...", "Analyzing credit card transactions...", aiMessage},
	domain.SourceSMS:        {"Reading message...", "Analyzing message...", aiMessage},
	domain.SourceBill:       {"Reading bill...", "Analyzing bill...", aiMessage},
}
