package posecache

import (
	"github.com/banshee-data/vrtrack/internal/vr"
)

// Update runs one frame:
//
//  1. poll the runtime for poses, controller states and role assignments
//  2. rebuild the device table and publish the poses
//  3. diff controller button masks and dispatch button events
//  4. evaluate every (device, volume) pair and dispatch overlap edges
//
// Listeners run synchronously on the calling goroutine with no registry
// lock held, so they may register, unregister, create or destroy volumes.
// They must not call Update. Update is a no-op before Init succeeds.
func (m *Manager) Update() {
	if !m.initialized.Load() {
		return
	}

	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	// Step 1: poll. A failed poll leaves the whole frame invalid.
	m.frame.Reset()
	if err := m.runtime.Poll(&m.frame); err != nil {
		if !m.pollFailing {
			opsf("session %s: runtime poll failed: %v", m.id, err)
			m.pollFailing = true
		}
		m.frame.Reset()
	} else if m.pollFailing {
		opsf("session %s: runtime poll recovered", m.id)
		m.pollFailing = false
	}

	// Step 2: publish poses and the role table.
	m.publishPoses()

	// Step 3: button edges.
	buttons := m.dispatchButtons()

	// Step 4: overlap edges.
	overlaps := m.evaluateOverlaps()

	n := m.frames.Add(1)
	tracef("session %s: frame %d buttons=%d overlaps=%d", m.id, n, buttons, overlaps)
}

// CheckStatesForMask reports whether the bits in mask went from clear to
// set, set to clear, or neither between previous and current.
func (m *Manager) CheckStatesForMask(previous, current, mask uint64) vr.MaskTransition {
	return vr.CheckStatesForMask(previous, current, mask)
}

func (m *Manager) publishPoses() {
	table := vr.NewDeviceTable(m.frame.Roles)

	m.poseMu.Lock()
	m.poses.Poses[vr.RenderPose] = m.frame.Render
	m.poses.Poses[vr.GamePose] = m.frame.Game
	m.poses.Table = table
	m.poseMu.Unlock()
}

// dispatchButtons diffs each valid controller state against the last valid
// state seen for that slot (all released before the first one). Slots
// without a valid state keep their previous snapshot, so a dropped frame
// does not replay presses.
func (m *Manager) dispatchButtons() int {
	dispatched := 0
	for i := range m.frame.Controllers {
		cur := m.frame.Controllers[i]
		if !cur.Valid {
			continue
		}
		prev := m.controllers[i]
		m.controllers[i] = cur

		idx := vr.DeviceIndex(i)
		role := m.poses.Table.Role(idx)
		for _, b := range m.buttons {
			mask := vr.ButtonMask(b)

			switch vr.CheckStatesForMask(prev.ButtonPressed, cur.ButtonPressed, mask) {
			case vr.MaskSet:
				m.emitButton(vr.ButtonEvent{Kind: vr.ButtonPressed, Button: b, Device: role, Index: idx})
				dispatched++
			case vr.MaskCleared:
				m.emitButton(vr.ButtonEvent{Kind: vr.ButtonReleased, Button: b, Device: role, Index: idx})
				dispatched++
			}

			if !m.cfg.TouchEvents {
				continue
			}
			switch vr.CheckStatesForMask(prev.ButtonTouched, cur.ButtonTouched, mask) {
			case vr.MaskSet:
				m.emitButton(vr.ButtonEvent{Kind: vr.ButtonTouched, Button: b, Device: role, Index: idx})
				dispatched++
			case vr.MaskCleared:
				m.emitButton(vr.ButtonEvent{Kind: vr.ButtonUntouched, Button: b, Device: role, Index: idx})
				dispatched++
			}
		}
	}
	return dispatched
}

func (m *Manager) emitButton(e vr.ButtonEvent) {
	tracef("session %s: button %s %s on %s (slot %d)", m.id, e.Button, e.Kind, e.Device, e.Index)
	for _, l := range m.buttonListeners.Items() {
		l.OnButtonEvent(e)
	}
}

// evaluateOverlaps tests every slot against every live volume, slot-major
// and in handle order within a slot.
func (m *Manager) evaluateOverlaps() int {
	m.scratch = m.volumes.snapshot(m.scratch[:0])
	defer clear(m.scratch)

	if len(m.scratch) == 0 {
		return 0
	}

	dispatched := 0
	for i := 0; i < vr.MaxTrackedDeviceCount; i++ {
		idx := vr.DeviceIndex(i)
		for _, v := range m.scratch {
			// An unknown timing yields the zero pose, which never overlaps.
			other, _ := m.poses.Pose(idx, v.Timing())
			kind := v.CheckOverlapWithPose(&m.poses, idx, other, m.cfg.SelfCollisions)
			if kind == vr.OverlapNone {
				continue
			}
			m.emitOverlap(vr.OverlapEvent{
				Kind:   kind,
				Handle: v.Handle(),
				Device: m.poses.Table.Role(idx),
				Index:  idx,
			})
			dispatched++
		}
	}
	return dispatched
}

func (m *Manager) emitOverlap(e vr.OverlapEvent) {
	tracef("session %s: volume %d %s by %s (slot %d)", m.id, e.Handle, e.Kind, e.Device, e.Index)
	for _, l := range m.overlapListeners.Items() {
		l.OnOverlapEvent(e)
	}
}
