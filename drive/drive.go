package drive

import (
	"math"
	"sort"

	"github.com/ByLCY/kinetype/engine"
	"github.com/ByLCY/kinetype/lyrics"
)

// Reference playback driver. The engine owns no clock: something must feed
// it song time plus beat state each tick. This driver derives both from the
// beat grid alone, so offline export and live preview produce identical
// frames for identical timestamps.

// defaultIntervalSec stands in when the grid has no usable beat spacing.
const defaultIntervalSec = 0.5

// Driver turns a song time into a complete engine.FrameInput.
type Driver struct {
	grid lyrics.BeatGrid
	phys Integrator
	last float64
	init bool
}

// NewDriver builds a driver over a beat grid.
func NewDriver(grid lyrics.BeatGrid) *Driver {
	return &Driver{grid: grid, phys: NewIntegrator()}
}

// Tick advances the driver to song time t and returns the frame input.
// Backward seeks reset the physics integrator instead of integrating a
// negative step.
func (d *Driver) Tick(t float64) engine.FrameInput {
	dt := 0.0
	if d.init {
		dt = t - d.last
	}
	if dt < 0 {
		d.phys = NewIntegrator()
		dt = 0
	}
	d.last = t
	d.init = true

	idx, intensity := d.beatAt(t)
	d.phys.Step(dt, intensity)
	return engine.FrameInput{
		Now:           t,
		BeatIndex:     idx,
		BeatIntensity: intensity,
		Physics:       d.phys.State(),
	}
}

// beatAt reports the index of the last beat at or before t and the pulse
// intensity: 1 on the beat, decaying exponentially over the beat interval.
func (d *Driver) beatAt(t float64) (int, float64) {
	beats := d.grid.Beats
	if len(beats) == 0 {
		return 0, 0
	}
	i := sort.SearchFloat64s(beats, t)
	if i > 0 && (i == len(beats) || beats[i] > t) {
		i--
	}
	if beats[i] > t {
		return 0, 0 // before the first beat
	}

	interval := d.interval(i)
	age := t - beats[i]
	intensity := math.Exp(-4 * age / interval)

	conf := d.grid.Confidence
	if conf <= 0 || conf > 1 {
		conf = 1
	}
	return i, intensity * conf
}

// interval returns the spacing around beat i, from the neighbors when
// possible, from the BPM otherwise.
func (d *Driver) interval(i int) float64 {
	beats := d.grid.Beats
	if i+1 < len(beats) {
		if iv := beats[i+1] - beats[i]; iv > 0 {
			return iv
		}
	}
	if i > 0 {
		if iv := beats[i] - beats[i-1]; iv > 0 {
			return iv
		}
	}
	if d.grid.BPM > 0 {
		return 60 / d.grid.BPM
	}
	return defaultIntervalSec
}

// Integrator accumulates the beat pulse into smooth physics values: scale
// eases toward a beat-driven target, shake energy decays between beats.
type Integrator struct {
	scale float64
	shake float64
}

// NewIntegrator returns an integrator at rest.
func NewIntegrator() Integrator {
	return Integrator{scale: 1}
}

// Step integrates one tick of dt seconds at the given beat intensity.
func (g *Integrator) Step(dt, intensity float64) {
	if dt < 0 {
		dt = 0
	}
	target := 1 + 0.10*intensity
	ease := 1 - math.Exp(-12*dt)
	g.scale += (target - g.scale) * ease

	g.shake *= math.Exp(-7 * dt)
	if hit := intensity * 0.6; hit > g.shake {
		g.shake = hit
	}
}

// State snapshots the integrator as engine physics input.
func (g *Integrator) State() engine.PhysicsState {
	return engine.PhysicsState{Scale: g.scale, Shake: g.shake}
}
