// Package animation evaluates glTF keyframe animations against a scene
// graph and produces the joint matrix palette consumed by GPU skinning.
package animation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/arclight3d/arclight/internal/engine/scene"
	"github.com/arclight3d/arclight/pkg/gltf"
	"github.com/arclight3d/arclight/pkg/math"
)

// ErrAnimationNotFound reports a playback request for a clip name the
// document does not contain.
var ErrAnimationNotFound = errors.New("animation: animation not found")

// LoopMode controls what happens when playback reaches the end of a clip.
type LoopMode int

const (
	// LoopOnce clamps at the final keyframe and marks the clip finished.
	LoopOnce LoopMode = iota
	// LoopForever wraps the clip time modulo its duration.
	LoopForever
)

// Clip selects a time window of one document animation for playback.
// Start and End are in seconds on the animation's own timeline; a zero End
// means the animation's full duration.
type Clip struct {
	Animation int
	Start     float32
	End       float32
	Loop      LoopMode
}

// channel is one decoded animation channel: keyframe times plus values for
// a single node property. Times are strictly ascending after decode.
type channel struct {
	node int
	path string
	step bool

	times []float32
	vecs  []math.Vec3 // translation and scale channels
	quats []math.Quat // rotation channels
}

type clipData struct {
	name     string
	duration float32
	channels []channel
}

type activeClip struct {
	clip     Clip
	time     float32
	finished bool
}

// Animator owns per-instance playback state over a shared document. All
// keyframe data is decoded once at construction; Update and Seek only
// sample it. Not safe for concurrent use.
type Animator struct {
	graph  *scene.Graph
	clips  []clipData
	active []activeClip
}

// New decodes every animation in the document and binds the animator to a
// graph. The document is not retained.
func New(doc *gltf.Document, graph *scene.Graph) (*Animator, error) {
	a := &Animator{
		graph: graph,
		clips: make([]clipData, len(doc.Animations)),
	}

	for i := range doc.Animations {
		anim := &doc.Animations[i]
		cd := &a.clips[i]
		cd.name = anim.Name

		for ci := range anim.Channels {
			ch, err := decodeChannel(doc, anim, ci)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", i, ci, err)
			}
			if ch == nil {
				continue // unsupported target path
			}
			if last := ch.times[len(ch.times)-1]; last > cd.duration {
				cd.duration = last
			}
			cd.channels = append(cd.channels, *ch)
		}
	}
	return a, nil
}

func decodeChannel(doc *gltf.Document, anim *gltf.Animation, ci int) (*channel, error) {
	dc := &anim.Channels[ci]
	if dc.Target.Node == nil {
		return nil, nil
	}
	if dc.Target.Path == gltf.PathWeights {
		// Morph targets are not evaluated.
		return nil, nil
	}

	s := &anim.Samplers[dc.Sampler]
	ch := &channel{
		node: *dc.Target.Node,
		path: dc.Target.Path,
		step: s.Interpolation == gltf.InterpolationStep,
	}

	times, err := doc.ReadFloats(s.Input)
	if err != nil {
		return nil, fmt.Errorf("sampler input: %w", err)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("%w: sampler has no keyframes", gltf.ErrMalformedAsset)
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			return nil, fmt.Errorf("%w: keyframe times not strictly ascending", gltf.ErrMalformedAsset)
		}
	}
	ch.times = times

	switch dc.Target.Path {
	case gltf.PathTranslation, gltf.PathScale:
		ch.vecs, err = doc.ReadVec3(s.Output)
		if err != nil {
			return nil, fmt.Errorf("sampler output: %w", err)
		}
		if len(ch.vecs) != len(times) {
			return nil, fmt.Errorf("%w: %d keyframes but %d values", gltf.ErrMalformedAsset, len(times), len(ch.vecs))
		}
	case gltf.PathRotation:
		ch.quats, err = doc.ReadQuats(s.Output)
		if err != nil {
			return nil, fmt.Errorf("sampler output: %w", err)
		}
		if len(ch.quats) != len(times) {
			return nil, fmt.Errorf("%w: %d keyframes but %d values", gltf.ErrMalformedAsset, len(times), len(ch.quats))
		}
	default:
		return nil, fmt.Errorf("%w: unknown target path %q", gltf.ErrMalformedAsset, dc.Target.Path)
	}
	return ch, nil
}

// ClipCount returns the number of animations in the source document.
func (a *Animator) ClipCount() int { return len(a.clips) }

// ClipName returns the name of animation i, which may be empty.
func (a *Animator) ClipName(i int) string { return a.clips[i].name }

// Duration returns the full duration in seconds of animation i.
func (a *Animator) Duration(i int) float32 { return a.clips[i].duration }

// Playing reports whether any unfinished clip is active.
func (a *Animator) Playing() bool {
	for i := range a.active {
		if !a.active[i].finished {
			return true
		}
	}
	return false
}

// Stop clears all active clips. Node transforms keep their last pose.
func (a *Animator) Stop() { a.active = a.active[:0] }

// PlayClip replaces the active set with a single clip window.
func (a *Animator) PlayClip(c Clip) error {
	a.Stop()
	return a.addClip(c)
}

// Play replaces the active set with the full animation of the given index.
func (a *Animator) Play(index int, loop LoopMode) error {
	return a.PlayClip(Clip{Animation: index, Loop: loop})
}

// PlayName replaces the active set with the first animation whose name
// matches. Returns ErrAnimationNotFound when no animation has that name.
func (a *Animator) PlayName(name string, loop LoopMode) error {
	for i := range a.clips {
		if a.clips[i].name == name {
			return a.Play(i, loop)
		}
	}
	return fmt.Errorf("%w: %q", ErrAnimationNotFound, name)
}

// PlayAll activates every animation simultaneously, looping forever. When
// two clips animate the same node property, the later one in document
// order wins.
func (a *Animator) PlayAll() {
	a.Stop()
	for i := range a.clips {
		a.addClip(Clip{Animation: i, Loop: LoopForever})
	}
}

func (a *Animator) addClip(c Clip) error {
	if c.Animation < 0 || c.Animation >= len(a.clips) {
		return fmt.Errorf("%w: index %d", ErrAnimationNotFound, c.Animation)
	}
	if c.End <= c.Start {
		c.End = a.clips[c.Animation].duration
	}
	a.active = append(a.active, activeClip{clip: c, time: c.Start})
	return nil
}

// Update advances every active clip by dt seconds, drops clips that
// finished on the previous frame, samples all channels and recomputes the
// graph's global transforms.
func (a *Animator) Update(dt float32) {
	kept := a.active[:0]
	for i := range a.active {
		if !a.active[i].finished {
			kept = append(kept, a.active[i])
		}
	}
	a.active = kept

	for i := range a.active {
		ac := &a.active[i]
		ac.time += dt
		a.wrap(ac)
	}
	a.apply()
}

// Seek sets every active clip's local time to t seconds past its window
// start and re-poses the graph. Finished clips are revived when t lands
// back inside the window.
func (a *Animator) Seek(t float32) {
	for i := range a.active {
		ac := &a.active[i]
		ac.time = ac.clip.Start + t
		ac.finished = false
		a.wrap(ac)
	}
	a.apply()
}

func (a *Animator) wrap(ac *activeClip) {
	start, end := ac.clip.Start, ac.clip.End
	length := end - start
	if length <= 0 {
		ac.time = start
		if ac.clip.Loop == LoopOnce {
			ac.finished = true
		}
		return
	}
	switch ac.clip.Loop {
	case LoopForever:
		for ac.time >= end {
			ac.time -= length
		}
		for ac.time < start {
			ac.time += length
		}
	default:
		if ac.time >= end {
			ac.time = end
			ac.finished = true
		}
		if ac.time < start {
			ac.time = start
		}
	}
}

// apply samples every active clip's channels into the graph in activation
// order. Later writes overwrite earlier ones.
func (a *Animator) apply() {
	if len(a.active) == 0 {
		return
	}
	for i := range a.active {
		ac := &a.active[i]
		cd := &a.clips[ac.clip.Animation]
		for ci := range cd.channels {
			a.applyChannel(&cd.channels[ci], ac.time)
		}
	}
	a.graph.UpdateGlobalTransforms()
}

func (a *Animator) applyChannel(ch *channel, t float32) {
	if ch.node >= len(a.graph.Nodes) {
		return
	}
	n := &a.graph.Nodes[ch.node]
	switch ch.path {
	case gltf.PathTranslation:
		n.Translation = sampleVec3(ch, t)
	case gltf.PathScale:
		n.Scale = sampleVec3(ch, t)
	case gltf.PathRotation:
		n.Rotation = sampleQuat(ch, t)
	}
}

// bracket locates the keyframe pair surrounding t. Outside the keyframe
// range it clamps to the first or last key with f = 0.
func bracket(times []float32, t float32) (i0, i1 int, f float32) {
	if t <= times[0] {
		return 0, 0, 0
	}
	last := len(times) - 1
	if t >= times[last] {
		return last, last, 0
	}
	// First index whose time exceeds t.
	hi := sort.Search(len(times), func(i int) bool { return times[i] > t })
	lo := hi - 1
	f = (t - times[lo]) / (times[hi] - times[lo])
	return lo, hi, f
}

func sampleVec3(ch *channel, t float32) math.Vec3 {
	i0, i1, f := bracket(ch.times, t)
	if i0 == i1 || ch.step {
		return ch.vecs[i0]
	}
	return ch.vecs[i0].Lerp(ch.vecs[i1], f)
}

func sampleQuat(ch *channel, t float32) math.Quat {
	i0, i1, f := bracket(ch.times, t)
	if i0 == i1 || ch.step {
		return ch.quats[i0]
	}
	return ch.quats[i0].Slerp(ch.quats[i1], f)
}

// JointCount returns the number of joints in the given skin, 0 when the
// skin index is out of range.
func (a *Animator) JointCount(skin int) int {
	if skin < 0 || skin >= len(a.graph.Skins) {
		return 0
	}
	return len(a.graph.Skins[skin].Joints)
}

// JointMatrices builds the shader palette for one skin: each slot holds
// global(joint) * inverseBind(joint), unused slots stay identity. Call
// after Update or Seek so globals are current.
func (a *Animator) JointMatrices(skin int) [scene.MaxJoints]math.Mat4 {
	var out [scene.MaxJoints]math.Mat4
	for i := range out {
		out[i] = math.Identity()
	}
	if skin < 0 || skin >= len(a.graph.Skins) {
		return out
	}
	s := &a.graph.Skins[skin]
	for i, j := range s.Joints {
		out[i] = a.graph.Nodes[j].Global.Mul(s.InverseBind[i])
	}
	return out
}
