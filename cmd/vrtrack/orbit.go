package main

import (
	"math"
	"time"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/vrtrack/internal/frameloop"
	"github.com/banshee-data/vrtrack/internal/geom"
	"github.com/banshee-data/vrtrack/internal/timeutil"
	"github.com/banshee-data/vrtrack/internal/vr"
	"github.com/banshee-data/vrtrack/internal/vrfeed"
)

// Simulated device layout. The left hand circles the right hand so it passes
// through the demo sphere once per period.
const (
	orbitHMD   vr.DeviceIndex = 0
	orbitRight vr.DeviceIndex = 1
	orbitLeft  vr.DeviceIndex = 2

	orbitRadius = 0.3
)

var (
	orbitHMDPos   = r3.Vec{Y: 1.7}
	orbitRightPos = r3.Vec{X: 0.25, Y: 1.2, Z: -0.3}
)

// orbit animates a SimRuntime before every frame and then runs the next
// updater, so the frame loop drives both.
type orbit struct {
	sim    *vrfeed.SimRuntime
	next   frameloop.Updater
	clock  timeutil.Clock
	start  time.Time
	period time.Duration
}

func newOrbit(sim *vrfeed.SimRuntime, next frameloop.Updater, clock timeutil.Clock, period time.Duration) *orbit {
	sim.AssignRole(vr.DeviceHMD, orbitHMD)
	sim.AssignRole(vr.DeviceRightHand, orbitRight)
	sim.AssignRole(vr.DeviceLeftHand, orbitLeft)
	o := &orbit{sim: sim, next: next, clock: clock, start: clock.Now(), period: period}
	o.step(0)
	return o
}

// leftHandAt returns the left hand position and facing at elapsed.
func (o *orbit) leftHandAt(elapsed time.Duration) (r3.Vec, quat.Number) {
	phase := 2 * math.Pi * float64(elapsed%o.period) / float64(o.period)
	offset := r3.Vec{X: orbitRadius * math.Cos(phase), Z: orbitRadius * math.Sin(phase)}
	// Yaw about +Y so the controller faces along its path.
	half := (phase + math.Pi/2) / 2
	facing := quat.Number{Real: math.Cos(half), Jmag: math.Sin(half)}
	return r3.Add(orbitRightPos, offset), facing
}

func (o *orbit) step(elapsed time.Duration) {
	o.sim.SetPosition(orbitHMD, vr.ClassHMD, orbitHMDPos)
	o.sim.SetPosition(orbitRight, vr.ClassController, orbitRightPos)

	pos, facing := o.leftHandAt(elapsed)
	o.sim.SetTransform(orbitLeft, vr.ClassController, geom.FromRotation(facing, pos))

	// Trigger held for the first half of each lap, grip touched for the second.
	var pressed, touched uint64
	if elapsed%o.period < o.period/2 {
		pressed = vr.ButtonMask(vr.ButtonTrigger)
	} else {
		touched = vr.ButtonMask(vr.ButtonGrip)
	}
	o.sim.SetButtons(orbitLeft, pressed, touched)
	o.sim.SetButtons(orbitRight, 0, 0)
}

// Update implements frameloop.Updater.
func (o *orbit) Update() {
	o.step(o.clock.Since(o.start))
	o.next.Update()
}
