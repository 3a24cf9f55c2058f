package mock

import (
	"container/list"
	"time"
)

// TimerID identifies a timer created by SetTimeout or SetInterval.
type TimerID int

type timer struct {
	id       TimerID
	seq      int64
	fireAt   time.Time
	interval time.Duration // zero for a one-shot timer
	callback func()
}

// timerQueue keeps pending timers ordered by fire time. Timers with the same fire time are
// ordered by registration sequence, which is preserved when an interval timer is re-queued.
type timerQueue struct {
	list *list.List
	byID map[TimerID]*list.Element
}

func newTimerQueue() *timerQueue {
	return &timerQueue{list: list.New(), byID: make(map[TimerID]*list.Element)}
}

func (q *timerQueue) len() int {
	return q.list.Len()
}

func (q *timerQueue) insert(t *timer) {
	for el := q.list.Front(); el != nil; el = el.Next() {
		other := el.Value.(*timer)
		if other.fireAt.After(t.fireAt) || (other.fireAt.Equal(t.fireAt) && other.seq > t.seq) {
			q.byID[t.id] = q.list.InsertBefore(t, el)
			return
		}
	}
	q.byID[t.id] = q.list.PushBack(t)
}

func (q *timerQueue) remove(id TimerID) bool {
	el, ok := q.byID[id]
	if !ok {
		return false
	}
	q.list.Remove(el)
	delete(q.byID, id)
	return true
}

// peek returns the next timer to fire, or nil.
func (q *timerQueue) peek() *timer {
	if el := q.list.Front(); el != nil {
		return el.Value.(*timer)
	}
	return nil
}

// last returns the timer that is scheduled to fire last, or nil.
func (q *timerQueue) last() *timer {
	if el := q.list.Back(); el != nil {
		return el.Value.(*timer)
	}
	return nil
}

// popDue removes and returns the next timer if it fires no later than limit.
func (q *timerQueue) popDue(limit time.Time) *timer {
	t := q.peek()
	if t == nil || t.fireAt.After(limit) {
		return nil
	}
	q.remove(t.id)
	return t
}

func (q *timerQueue) clear() {
	q.list.Init()
	q.byID = make(map[TimerID]*list.Element)
}
