// Package spark implements a small bullet-hell mini game: a player ship
// dodging enemy bullet rings while shooting the emitters down. All game
// state lives on the Game struct and is advanced by Update; rendering and
// audio are left to the caller.
package spark

import (
	"math/rand"

	"github.com/arclight3d/arclight/pkg/math"
)

// Sound identifies an effect the caller should play.
type Sound int

const (
	SoundShoot Sound = iota
	SoundHit
	SoundExplosion
)

// Config holds playfield and difficulty settings.
type Config struct {
	Width  float32 // playfield width in world units
	Height float32 // playfield height in world units

	PlayerSpeed  float32
	PlayerLives  int
	FireCooldown float32

	SpawnInterval float32 // seconds between enemy spawns
	Seed          int64

	// OnSound is invoked for each sound event. May be nil.
	OnSound func(Sound)
}

// DefaultConfig returns settings tuned for the demo window.
func DefaultConfig() Config {
	return Config{
		Width:         20,
		Height:        15,
		PlayerSpeed:   8,
		PlayerLives:   3,
		FireCooldown:  0.15,
		SpawnInterval: 2.5,
	}
}

// Input is the player intent for one frame.
type Input struct {
	MoveX float32 // -1..1
	MoveY float32 // -1..1
	Fire  bool
}

// Player is the controllable ship.
type Player struct {
	Pos    math.Vec2
	Radius float32
	Lives  int

	// Remaining invulnerability after a hit, in seconds.
	Invuln float32

	cooldown float32
}

// Hittable reports whether the player can currently take damage.
func (p *Player) Hittable() bool {
	return p.Lives > 0 && p.Invuln <= 0
}

// Game is the complete mini game state.
type Game struct {
	cfg Config
	rng *rand.Rand

	Player  Player
	Enemies []Enemy
	Bullets []Bullet

	Score    int
	Elapsed  float32
	GameOver bool

	spawnTimer float32
}

// New creates a game with the player centered near the bottom edge.
func New(cfg Config) *Game {
	g := &Game{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		Player: Player{
			Pos:    math.Vec2{X: cfg.Width / 2, Y: cfg.Height * 0.15},
			Radius: 0.25,
			Lives:  cfg.PlayerLives,
		},
		spawnTimer: cfg.SpawnInterval,
	}
	return g
}

// Bounds returns the playfield dimensions.
func (g *Game) Bounds() (width, height float32) {
	return g.cfg.Width, g.cfg.Height
}

func (g *Game) sound(s Sound) {
	if g.cfg.OnSound != nil {
		g.cfg.OnSound(s)
	}
}

// Update advances the simulation by dt seconds.
func (g *Game) Update(dt float32, in Input) {
	if g.GameOver {
		return
	}
	g.Elapsed += dt

	g.updatePlayer(dt, in)
	g.updateEnemies(dt)
	g.updateBullets(dt)
	g.resolveCollisions()

	if g.Player.Lives <= 0 {
		g.GameOver = true
	}
}

func (g *Game) updatePlayer(dt float32, in Input) {
	p := &g.Player
	p.Pos.X += in.MoveX * g.cfg.PlayerSpeed * dt
	p.Pos.Y += in.MoveY * g.cfg.PlayerSpeed * dt
	p.Pos.X = math.Clamp(p.Pos.X, p.Radius, g.cfg.Width-p.Radius)
	p.Pos.Y = math.Clamp(p.Pos.Y, p.Radius, g.cfg.Height-p.Radius)

	if p.Invuln > 0 {
		p.Invuln -= dt
	}
	if p.cooldown > 0 {
		p.cooldown -= dt
	}
	if in.Fire && p.cooldown <= 0 {
		g.Bullets = append(g.Bullets, Bullet{
			Pos:    math.Vec2{X: p.Pos.X, Y: p.Pos.Y + p.Radius},
			Vel:    math.Vec2{Y: 14},
			Radius: 0.1,
		})
		p.cooldown = g.cfg.FireCooldown
		g.sound(SoundShoot)
	}
}

func (g *Game) updateEnemies(dt float32) {
	g.spawnTimer -= dt
	if g.spawnTimer <= 0 {
		g.spawnEnemy()
		g.spawnTimer = g.cfg.SpawnInterval
	}

	for i := range g.Enemies {
		e := &g.Enemies[i]
		e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		e.fireTimer -= dt
		if e.fireTimer <= 0 {
			g.emitRing(e)
			e.fireTimer = e.FireInterval
		}
	}

	// Drop enemies that drifted off the field.
	kept := g.Enemies[:0]
	for _, e := range g.Enemies {
		if e.Pos.Y > -1 {
			kept = append(kept, e)
		}
	}
	g.Enemies = kept
}

func (g *Game) updateBullets(dt float32) {
	kept := g.Bullets[:0]
	for _, b := range g.Bullets {
		b.Pos = b.Pos.Add(b.Vel.Scale(dt))
		if b.Pos.X < -1 || b.Pos.X > g.cfg.Width+1 ||
			b.Pos.Y < -1 || b.Pos.Y > g.cfg.Height+1 {
			continue
		}
		kept = append(kept, b)
	}
	g.Bullets = kept
}

func (g *Game) resolveCollisions() {
	playerCircle := Circle{Pos: g.Player.Pos, Radius: g.Player.Radius}

	keptBullets := g.Bullets[:0]
	for _, b := range g.Bullets {
		bc := Circle{Pos: b.Pos, Radius: b.Radius}

		if b.Hostile {
			if g.Player.Hittable() && bc.Intersects(playerCircle) {
				g.Player.Lives--
				g.Player.Invuln = 2
				g.sound(SoundHit)
				continue
			}
			keptBullets = append(keptBullets, b)
			continue
		}

		hit := false
		for ei := range g.Enemies {
			e := &g.Enemies[ei]
			if e.HP > 0 && bc.Intersects(Circle{Pos: e.Pos, Radius: e.Radius}) {
				e.HP--
				hit = true
				if e.HP <= 0 {
					g.Score += e.Value
					g.sound(SoundExplosion)
				}
				break
			}
		}
		if !hit {
			keptBullets = append(keptBullets, b)
		}
	}
	g.Bullets = keptBullets

	keptEnemies := g.Enemies[:0]
	for _, e := range g.Enemies {
		if e.HP > 0 {
			keptEnemies = append(keptEnemies, e)
		}
	}
	g.Enemies = keptEnemies
}
