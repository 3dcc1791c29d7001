package angrybot

import (
	gomath "math"
	"testing"

	"github.com/arclight3d/arclight/internal/engine/animation"
)

type playCall struct {
	name string
	loop animation.LoopMode
}

type fakeAnimator struct {
	calls []playCall
}

func (f *fakeAnimator) PlayName(name string, loop animation.LoopMode) error {
	f.calls = append(f.calls, playCall{name, loop})
	return nil
}

func (f *fakeAnimator) Playing() bool { return len(f.calls) > 0 }

func newTestPlayer() (*Player, *fakeAnimator) {
	anim := &fakeAnimator{}
	return NewPlayer(anim, DefaultClipNames()), anim
}

func TestNewPlayerStartsIdle(t *testing.T) {
	p, anim := newTestPlayer()
	if p.State() != StateIdle {
		t.Fatalf("state = %v, want idle", p.State())
	}
	if len(anim.calls) != 1 || anim.calls[0] != (playCall{"idle", animation.LoopForever}) {
		t.Errorf("calls = %v, want idle clip looping", anim.calls)
	}
}

func TestMovementEntersRunState(t *testing.T) {
	p, anim := newTestPlayer()
	p.Update(0.1, Input{MoveZ: 1})

	if p.State() != StateRun {
		t.Fatalf("state = %v, want run", p.State())
	}
	last := anim.calls[len(anim.calls)-1]
	if last != (playCall{"run", animation.LoopForever}) {
		t.Errorf("last call = %v, want run clip looping", last)
	}
	if p.Pos.Z != 0.1*p.Speed {
		t.Errorf("Z = %v, want %v", p.Pos.Z, 0.1*p.Speed)
	}
}

func TestRunDoesNotRestartClipEachFrame(t *testing.T) {
	p, anim := newTestPlayer()
	for i := 0; i < 10; i++ {
		p.Update(0.016, Input{MoveX: 1})
	}
	// one idle at construction, one run on first movement frame
	if len(anim.calls) != 2 {
		t.Errorf("calls = %d, want 2 (clip must not restart while held)", len(anim.calls))
	}
}

func TestStoppingReturnsToIdle(t *testing.T) {
	p, anim := newTestPlayer()
	p.Update(0.1, Input{MoveZ: 1})
	p.Update(0.1, Input{})

	if p.State() != StateIdle {
		t.Fatalf("state = %v, want idle", p.State())
	}
	last := anim.calls[len(anim.calls)-1]
	if last.name != "idle" {
		t.Errorf("last clip = %q, want idle", last.name)
	}
}

func TestShootPlaysOnceAndLocksMovement(t *testing.T) {
	p, anim := newTestPlayer()
	p.Update(0.016, Input{Shoot: true})

	if p.State() != StateShoot {
		t.Fatalf("state = %v, want shoot", p.State())
	}
	last := anim.calls[len(anim.calls)-1]
	if last != (playCall{"shoot", animation.LoopOnce}) {
		t.Errorf("last call = %v, want shoot clip once", last)
	}

	// Movement is ignored until the shoot timer runs out.
	p.Update(0.1, Input{MoveZ: 1})
	if p.Pos.Z != 0 {
		t.Errorf("player moved while shooting")
	}

	p.Update(p.ShootTime, Input{})
	if p.State() != StateIdle {
		t.Errorf("state = %v, want idle after shoot finishes", p.State())
	}
}

func TestHeadingFacesMovement(t *testing.T) {
	p, _ := newTestPlayer()
	p.Update(0.1, Input{MoveX: 1})
	if diff := gomath.Abs(float64(p.Heading) - gomath.Pi/2); diff > 1e-4 {
		t.Errorf("heading = %v, want pi/2", p.Heading)
	}
}

func TestDiagonalMovementNormalized(t *testing.T) {
	p, _ := newTestPlayer()
	p.Update(1, Input{MoveX: 1, MoveZ: 1})
	dist := gomath.Hypot(float64(p.Pos.X), float64(p.Pos.Z))
	if diff := gomath.Abs(dist - float64(p.Speed)); diff > 1e-3 {
		t.Errorf("diagonal distance = %v, want %v", dist, p.Speed)
	}
}

func TestTransformPlacesPlayer(t *testing.T) {
	p, _ := newTestPlayer()
	p.Pos.X = 3
	p.Pos.Z = -2
	m := p.Transform()
	if m[12] != 3 || m[14] != -2 {
		t.Errorf("translation = (%v, %v), want (3, -2)", m[12], m[14])
	}
}
