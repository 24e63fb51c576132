// Package diagnostics records what happened during status resolutions so a
// host can inspect recent lookups without any global state.
package diagnostics

import (
	"time"

	"github.com/google/uuid"
)

// Step names a stage of a resolution.
type Step string

const (
	StepTerms    Step = "terms"
	StepSearch   Step = "search"
	StepMatch    Step = "match"
	StepRequests Step = "requests"
	StepDetails  Step = "details"
	StepStatus   Step = "status"
	StepSubmit   Step = "submit"
	StepError    Step = "error"
)

// Event is one observation inside a trace.
type Event struct {
	Step    Step           `json:"step"`
	Time    time.Time      `json:"time"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Trace groups the events of a single resolution or submission.
type Trace struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Title      string    `json:"title"`
	MediaType  string    `json:"mediaType"`
	Generation uint64    `json:"generation,omitempty"`
	Started    time.Time `json:"started"`
	Duration   string    `json:"duration"`
	Outcome    string    `json:"outcome"`
	Events     []Event   `json:"events"`
}

// Recorder receives completed traces.
type Recorder interface {
	Record(Trace)
}

// Nop discards every trace.
type Nop struct{}

func (Nop) Record(Trace) {}

// Buffer keeps the most recent traces in memory.
type Buffer struct {
	traces *RingBuffer[Trace]
}

// NewBuffer creates a Buffer retaining up to capacity traces.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{traces: NewRingBuffer[Trace](capacity)}
}

func (b *Buffer) Record(t Trace) {
	b.traces.Push(t)
}

// Recent returns retained traces, newest first.
func (b *Buffer) Recent() []Trace {
	all := b.traces.GetAll()
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	return all
}

func (b *Buffer) Clear() {
	b.traces.Clear()
}

// Builder accumulates events for one trace. A nil *Builder is valid and
// records nothing.
type Builder struct {
	trace    Trace
	recorder Recorder
}

// Start opens a trace for operation on title.
func Start(recorder Recorder, operation, title, mediaType string) *Builder {
	if recorder == nil {
		return nil
	}
	if _, ok := recorder.(Nop); ok {
		return nil
	}
	return &Builder{
		recorder: recorder,
		trace: Trace{
			ID:        uuid.NewString(),
			Operation: operation,
			Title:     title,
			MediaType: mediaType,
			Started:   time.Now(),
		},
	}
}

// ID returns the trace id, or "" for a nil builder.
func (b *Builder) ID() string {
	if b == nil {
		return ""
	}
	return b.trace.ID
}

func (b *Builder) SetGeneration(gen uint64) {
	if b == nil {
		return
	}
	b.trace.Generation = gen
}

// Add appends an event.
func (b *Builder) Add(step Step, message string, data map[string]any) {
	if b == nil {
		return
	}
	b.trace.Events = append(b.trace.Events, Event{
		Step:    step,
		Time:    time.Now(),
		Message: message,
		Data:    data,
	})
}

// Finish stamps the outcome and hands the trace to the recorder.
func (b *Builder) Finish(outcome string) {
	if b == nil {
		return
	}
	b.trace.Outcome = outcome
	b.trace.Duration = time.Since(b.trace.Started).String()
	b.recorder.Record(b.trace)
}
