package sched

import (
	"errors"
	"fmt"
)

// TaskID identifies a task. It doubles as the task's slot index in the
// Registry, so valid IDs are 0 <= id < registry capacity.
type TaskID int32

// noTask is the nil value for intrusive list links.
const noTask TaskID = -1

var (
	ErrNoSuchTask     = errors.New("no such task")
	ErrTimeRegression = errors.New("consumed cpu time went backwards")
	ErrInvalidWeight  = errors.New("invalid task weight")
	ErrAlreadyQueued  = errors.New("task already queued")
)

// TaskRecord is the per-task state kept across enqueue/dispatch cycles.
// next/prev make the record an intrusive member of the ordered ready list;
// both are registry indices rather than pointers so the steady-state path
// never allocates.
type TaskRecord struct {
	id             TaskID
	sumExecRuntime uint64
	vruntime       float64
	next, prev     TaskID
	queued         bool
}

// ID returns the task identifier.
func (t *TaskRecord) ID() TaskID { return t.id }

// Vruntime returns the task's current virtual runtime.
func (t *TaskRecord) Vruntime() float64 { return t.vruntime }

// Registry is the preallocated task table. A record is "born" the first
// time its identifier shows up in a notification; there is no allocation
// or destruction step, the slot is reused for the task's whole lifetime.
type Registry struct {
	records []TaskRecord
}

// NewRegistry preallocates capacity task slots.
func NewRegistry(capacity int) *Registry {
	r := &Registry{records: make([]TaskRecord, capacity)}
	for i := range r.records {
		r.records[i].id = TaskID(i)
		r.records[i].next = noTask
		r.records[i].prev = noTask
	}
	return r
}

// Lookup resolves an identifier to its record. An identifier outside the
// preallocated range is a reportable fault, not a grow operation.
func (r *Registry) Lookup(id TaskID) (*TaskRecord, error) {
	if id < 0 || int(id) >= len(r.records) {
		return nil, fmt.Errorf("%w: id %d outside [0, %d)", ErrNoSuchTask, id, len(r.records))
	}
	return &r.records[id], nil
}

// Cap returns the fixed registry capacity.
func (r *Registry) Cap() int { return len(r.records) }

func (r *Registry) at(id TaskID) *TaskRecord {
	if id == noTask {
		return nil
	}
	return &r.records[id]
}
