// Package angrybot implements the third-person robot demo: a character
// that walks around a flat ground plane with a follow camera, driving a
// small animation state machine (idle, run, shoot).
package angrybot

import (
	gomath "math"

	"github.com/arclight3d/arclight/internal/engine/animation"
	"github.com/arclight3d/arclight/pkg/math"
)

// ClipPlayer is the slice of the animator the player drives.
type ClipPlayer interface {
	PlayName(name string, loop animation.LoopMode) error
	Playing() bool
}

// State is the current animation state of the robot.
type State int

const (
	StateIdle State = iota
	StateRun
	StateShoot
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRun:
		return "run"
	case StateShoot:
		return "shoot"
	}
	return "unknown"
}

// ClipNames maps states to animation clip names in the loaded asset.
type ClipNames struct {
	Idle  string
	Run   string
	Shoot string
}

// DefaultClipNames matches the clip names exported with the robot asset.
func DefaultClipNames() ClipNames {
	return ClipNames{Idle: "idle", Run: "run", Shoot: "shoot"}
}

// Input is the control intent for one frame.
type Input struct {
	MoveX float32 // -1..1, strafe axis
	MoveZ float32 // -1..1, forward axis
	Shoot bool
}

// Player is the controllable robot.
type Player struct {
	Pos     math.Vec3
	Heading float32 // rotation about Y, radians
	Speed   float32

	anim  ClipPlayer
	clips ClipNames
	state State

	// Remaining shoot animation time. Movement is locked out while firing.
	shootTimer float32
	ShootTime  float32
}

// NewPlayer creates a player at the origin facing -Z.
func NewPlayer(anim ClipPlayer, clips ClipNames) *Player {
	p := &Player{
		Speed:     4,
		ShootTime: 0.4,
		anim:      anim,
		clips:     clips,
		state:     StateShoot, // forces the first transition to apply
	}
	p.setState(StateIdle)
	return p
}

// State returns the current animation state.
func (p *Player) State() State { return p.state }

func (p *Player) setState(s State) {
	if s == p.state {
		return
	}
	p.state = s
	switch s {
	case StateIdle:
		p.anim.PlayName(p.clips.Idle, animation.LoopForever)
	case StateRun:
		p.anim.PlayName(p.clips.Run, animation.LoopForever)
	case StateShoot:
		p.anim.PlayName(p.clips.Shoot, animation.LoopOnce)
	}
}

// Update advances the player by dt seconds.
func (p *Player) Update(dt float32, in Input) {
	if p.shootTimer > 0 {
		p.shootTimer -= dt
		if p.shootTimer > 0 {
			return
		}
		p.setState(StateIdle)
	}

	if in.Shoot {
		p.shootTimer = p.ShootTime
		p.setState(StateShoot)
		return
	}

	move := math.Vec2{X: in.MoveX, Y: in.MoveZ}
	if move.Length() < 0.01 {
		p.setState(StateIdle)
		return
	}
	if move.Length() > 1 {
		move = move.Normalize()
	}

	p.Heading = float32(gomath.Atan2(float64(move.X), float64(move.Y)))
	p.Pos.X += move.X * p.Speed * dt
	p.Pos.Z += move.Y * p.Speed * dt
	p.setState(StateRun)
}

// Transform returns the world matrix placing the robot on the ground.
func (p *Player) Transform() math.Mat4 {
	return math.Translate(p.Pos.X, p.Pos.Y, p.Pos.Z).Mul(math.RotateY(p.Heading))
}
