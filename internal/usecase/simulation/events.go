package simulation

import (
	"fmt"
	"strings"

	"github.com/simaogato/tradesim-backend/internal/domain"
)

// Event is a named market-wide shock
type Event string

const (
	EventBull     Event = "bull"
	EventBear     Event = "bear"
	EventCrash    Event = "crash"
	EventRecovery Event = "recovery"
)

// impactRange is the uniform distribution of the relative price move of one event
type impactRange struct {
	base float64
	span float64
	sign float64
}

var impacts = map[Event]impactRange{
	EventBull:     {base: 0.05, span: 0.10, sign: 1},  // +5% to +15%
	EventBear:     {base: 0.05, span: 0.10, sign: -1}, // -5% to -15%
	EventCrash:    {base: 0.15, span: 0.20, sign: -1}, // -15% to -35%
	EventRecovery: {base: 0.10, span: 0.15, sign: 1},  // +10% to +25%
}

// Events lists the supported shock names
func Events() []Event {
	return []Event{EventBull, EventBear, EventCrash, EventRecovery}
}

// ParseEvent resolves a shock name, case-insensitively
func ParseEvent(name string) (Event, error) {
	event := Event(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := impacts[event]; !ok {
		return "", fmt.Errorf("%w: unknown market event %q", domain.ErrInvalidArgument, name)
	}
	return event, nil
}

// Impact maps a uniform draw r in [0, 1) to the event's relative price move
func (e Event) Impact(r float64) float64 {
	ir := impacts[e]
	return ir.sign * (ir.base + r*ir.span)
}
