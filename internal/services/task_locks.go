package services

import "sync"

// TaskLocks serialises work on the same task inside one process. Entries are
// reference counted and dropped once no goroutine holds or waits for them.
type TaskLocks struct {
	mu    sync.Mutex
	locks map[uint64]*taskLock
}

type taskLock struct {
	mu   sync.Mutex
	refs int
}

func NewTaskLocks() *TaskLocks {
	return &TaskLocks{locks: make(map[uint64]*taskLock)}
}

// Lock blocks until the caller owns taskID and returns the release function.
func (l *TaskLocks) Lock(taskID uint64) func() {
	l.mu.Lock()
	entry, ok := l.locks[taskID]
	if !ok {
		entry = &taskLock{}
		l.locks[taskID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, taskID)
			}
			l.mu.Unlock()
		})
	}
}

// held returns the number of tracked task IDs.
func (l *TaskLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
