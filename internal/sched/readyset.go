package sched

// readySet holds runnable tasks awaiting dispatch, ordered by ascending
// vruntime. PopFront always yields the member with the lowest vruntime;
// members with equal vruntime come out in insertion order.
type readySet interface {
	Insert(t *TaskRecord) error
	PopFront() (*TaskRecord, bool)
	Len() int
}

// orderedList is the default readySet: a doubly linked list threaded
// through the registry arena via index links. Insertion is a linear scan
// (the ready set stays small, bounded by runnable-and-pending tasks, not by
// registry capacity), pop is O(1), and no node is ever allocated.
type orderedList struct {
	reg        *Registry
	head, tail TaskID
	size       int
}

func newOrderedList(reg *Registry) *orderedList {
	return &orderedList{reg: reg, head: noTask, tail: noTask}
}

func (l *orderedList) Len() int { return l.size }

// Insert places t before the first member with a strictly greater vruntime,
// keeping equal-vruntime members in arrival order. Inserting a current
// member is a contract violation and is reported.
func (l *orderedList) Insert(t *TaskRecord) error {
	if t.queued {
		return ErrAlreadyQueued
	}

	var prev *TaskRecord
	curr := l.reg.at(l.head)
	for curr != nil && curr.vruntime <= t.vruntime {
		prev = curr
		curr = l.reg.at(curr.next)
	}

	if prev == nil {
		t.prev = noTask
		t.next = l.head
		if l.head != noTask {
			l.reg.at(l.head).prev = t.id
		} else {
			l.tail = t.id
		}
		l.head = t.id
	} else {
		t.prev = prev.id
		t.next = prev.next
		if prev.next != noTask {
			l.reg.at(prev.next).prev = t.id
		} else {
			l.tail = t.id
		}
		prev.next = t.id
	}

	t.queued = true
	l.size++
	return nil
}

// PopFront removes and returns the lowest-vruntime member.
func (l *orderedList) PopFront() (*TaskRecord, bool) {
	t := l.reg.at(l.head)
	if t == nil {
		return nil, false
	}
	l.remove(t)
	return t, true
}

func (l *orderedList) remove(t *TaskRecord) {
	if t.prev != noTask {
		l.reg.at(t.prev).next = t.next
	} else {
		l.head = t.next
	}
	if t.next != noTask {
		l.reg.at(t.next).prev = t.prev
	} else {
		l.tail = t.prev
	}
	t.next, t.prev = noTask, noTask
	t.queued = false
	l.size--
}
