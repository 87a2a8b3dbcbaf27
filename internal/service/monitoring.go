package service

import (
	"sync"

	"sensor_simulator/internal/models"
)

const defaultSubscriberBuffer = 4

// MonitoringService keeps the latest snapshot and fans new ones out to subscribers.
// Slow subscribers miss snapshots rather than block the simulator.
type MonitoringService struct {
	mu     sync.RWMutex
	latest models.Snapshot
	has    bool
	subs   map[int]chan models.Snapshot
	nextID int
}

func NewMonitoringService() *MonitoringService {
	return &MonitoringService{subs: make(map[int]chan models.Snapshot)}
}

// Publish stores a copy of snap and offers it to every subscriber.
func (s *MonitoringService) Publish(snap models.Snapshot) {
	snap = copySnapshot(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = snap
	s.has = true
	for _, ch := range s.subs {
		select {
		case ch <- copySnapshot(snap):
		default:
		}
	}
}

// Latest returns the last published snapshot, or false before the first tick.
func (s *MonitoringService) Latest() (models.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.has {
		return models.Snapshot{}, false
	}
	return copySnapshot(s.latest), true
}

// Subscribe returns a feed of published snapshots and a cancel func that closes it.
func (s *MonitoringService) Subscribe(buffer int) (<-chan models.Snapshot, func()) {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	ch := make(chan models.Snapshot, buffer)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func copySnapshot(snap models.Snapshot) models.Snapshot {
	out := snap
	out.Readings = append([]models.Reading(nil), snap.Readings...)
	return out
}
