package posecache

import (
	"math"
	"slices"
	"sync"

	"github.com/banshee-data/vrtrack/internal/overlap"
	"github.com/banshee-data/vrtrack/internal/vr"
)

// compactThreshold is the minimum number of tombstones before the store
// considers compacting.
const compactThreshold = 32

type volumeSlot struct {
	handle vr.Handle
	volume *overlap.Volume // nil once destroyed
}

// volumeStore is the overlap volume registry: a dense, handle-ordered slice
// with tombstones for destroyed entries. Handles come from a simple counter
// and are never reused.
type volumeStore struct {
	mu         sync.Mutex
	lastHandle uint32
	slots      []volumeSlot
	live       int
}

// create allocates the next handle and stores the volume returned by build.
// It returns vr.InvalidHandle once the handle space is exhausted.
func (s *volumeStore) create(build func(vr.Handle) *overlap.Volume) vr.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastHandle == math.MaxUint32 {
		return vr.InvalidHandle
	}
	s.lastHandle++
	h := vr.Handle(s.lastHandle)
	s.slots = append(s.slots, volumeSlot{handle: h, volume: build(h)})
	s.live++
	return h
}

func (s *volumeStore) find(h vr.Handle) int {
	i, ok := slices.BinarySearchFunc(s.slots, h, func(slot volumeSlot, target vr.Handle) int {
		switch {
		case slot.handle < target:
			return -1
		case slot.handle > target:
			return 1
		}
		return 0
	})
	if !ok || s.slots[i].volume == nil {
		return -1
	}
	return i
}

// get returns the live volume for h, or nil.
func (s *volumeStore) get(h vr.Handle) *overlap.Volume {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(h); i >= 0 {
		return s.slots[i].volume
	}
	return nil
}

// destroy tombstones h. It reports whether a live volume was removed.
func (s *volumeStore) destroy(h vr.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(h)
	if i < 0 {
		return false
	}
	s.slots[i].volume = nil
	s.live--

	if dead := len(s.slots) - s.live; dead >= compactThreshold && dead > s.live {
		s.slots = slices.DeleteFunc(s.slots, func(slot volumeSlot) bool { return slot.volume == nil })
	}
	return true
}

// snapshot appends the live volumes, in handle order, to dst.
func (s *volumeStore) snapshot(dst []*overlap.Volume) []*overlap.Volume {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.volume != nil {
			dst = append(dst, slot.volume)
		}
	}
	return dst
}

func (s *volumeStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live
}
