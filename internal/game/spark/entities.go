package spark

import (
	gomath "math"

	"github.com/arclight3d/arclight/pkg/math"
)

// Circle is the collision shape used by every entity.
type Circle struct {
	Pos    math.Vec2
	Radius float32
}

// Intersects reports whether two circles overlap.
func (c Circle) Intersects(o Circle) bool {
	r := c.Radius + o.Radius
	d := c.Pos.Sub(o.Pos)
	return d.Dot(d) <= r*r
}

// Bullet is a projectile. Hostile bullets damage the player,
// friendly ones damage enemies.
type Bullet struct {
	Pos     math.Vec2
	Vel     math.Vec2
	Radius  float32
	Hostile bool
}

// Enemy is a bullet emitter drifting down the playfield.
type Enemy struct {
	Pos    math.Vec2
	Vel    math.Vec2
	Radius float32
	HP     int
	Value  int

	// RingCount bullets are emitted per volley.
	RingCount    int
	FireInterval float32
	fireTimer    float32
}

func (g *Game) spawnEnemy() {
	x := g.Player.Radius + g.rng.Float32()*(g.cfg.Width-2*g.Player.Radius)
	g.Enemies = append(g.Enemies, Enemy{
		Pos:          math.Vec2{X: x, Y: g.cfg.Height + 0.5},
		Vel:          math.Vec2{Y: -1.2},
		Radius:       0.5,
		HP:           3,
		Value:        100,
		RingCount:    12,
		FireInterval: 1.5,
		fireTimer:    0.5,
	})
}

// emitRing fires an evenly spaced ring of hostile bullets, rotated by a
// random phase so consecutive volleys do not line up.
func (g *Game) emitRing(e *Enemy) {
	phase := g.rng.Float64() * 2 * gomath.Pi
	for i := 0; i < e.RingCount; i++ {
		a := phase + 2*gomath.Pi*float64(i)/float64(e.RingCount)
		dir := math.Vec2{
			X: float32(gomath.Cos(a)),
			Y: float32(gomath.Sin(a)),
		}
		g.Bullets = append(g.Bullets, Bullet{
			Pos:     e.Pos,
			Vel:     dir.Scale(3.5),
			Radius:  0.12,
			Hostile: true,
		})
	}
}
