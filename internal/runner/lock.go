package runner

import (
	"fmt"
	"sync"
)

// ErrRunInProgress is returned when a run is requested for a scenario that
// already has one in flight.
var ErrRunInProgress = fmt.Errorf("a run is already in progress for this scenario")

// runLock rejects overlapping runs of the same scenario. Keyed by scenario
// id, process-local; the persistence layer is last-writer-wins, so this is
// the only guard against interleaved runs clobbering each other's results.
type runLock struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newRunLock() *runLock {
	return &runLock{inFlight: make(map[string]struct{})}
}

func (l *runLock) acquire(scenarioID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.inFlight[scenarioID]; ok {
		return ErrRunInProgress
	}
	l.inFlight[scenarioID] = struct{}{}
	return nil
}

func (l *runLock) release(scenarioID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.inFlight, scenarioID)
}
