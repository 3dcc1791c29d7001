// Command spark is a small bullet-hell demo: dodge the rings, shoot the
// emitters. Arrow keys or WASD move, SPACE fires.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/arclight3d/arclight/internal/config"
	"github.com/arclight3d/arclight/internal/engine/audio"
	"github.com/arclight3d/arclight/internal/engine/render"
	"github.com/arclight3d/arclight/internal/game"
	"github.com/arclight3d/arclight/internal/game/spark"
	"github.com/arclight3d/arclight/internal/logger"
	"github.com/arclight3d/arclight/pkg/math"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	app, err := game.New(game.Config{
		Title:      "Spark",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	})
	if err != nil {
		logger.Error("failed to create window", zap.Error(err))
		os.Exit(1)
	}
	defer app.Close()

	scene := &sparkScene{cfg: cfg}
	if err := app.Run(scene); err != nil {
		logger.Error("spark error", zap.Error(err))
		os.Exit(1)
	}
}

type sparkScene struct {
	cfg *config.Config

	renderer *render.ModelRenderer
	audio    *audio.Manager
	sounds   map[spark.Sound][]byte

	game *spark.Game

	ship   *flatShape
	enemy  *flatShape
	bullet *flatShape
	shot   *flatShape
}

func (s *sparkScene) Init(a *game.App) error {
	var err error
	s.renderer, err = render.NewModelRenderer()
	if err != nil {
		return err
	}

	s.ship = newShip([4]float32{0.4, 0.9, 1.0, 1})
	s.enemy = newQuad("enemy", [4]float32{1.0, 0.4, 0.3, 1})
	s.bullet = newQuad("bullet", [4]float32{1.0, 0.8, 0.2, 1})
	s.shot = newQuad("shot", [4]float32{0.5, 1.0, 0.6, 1})

	s.initAudio()

	gameCfg := spark.DefaultConfig()
	gameCfg.OnSound = s.playSound
	s.game = spark.New(gameCfg)
	return nil
}

func (s *sparkScene) initAudio() {
	s.audio = audio.New()
	if err := s.audio.Init(); err != nil {
		logger.Warn("audio unavailable", zap.Error(err))
		s.audio = nil
		return
	}
	s.audio.SetMasterVolume(float64(s.cfg.Audio.MasterVolume))
	s.audio.SetSFXVolume(float64(s.cfg.Audio.SFXVolume))

	s.sounds = make(map[spark.Sound][]byte)
	files := map[spark.Sound]string{
		spark.SoundShoot:     "shoot.wav",
		spark.SoundHit:       "hit.wav",
		spark.SoundExplosion: "explosion.wav",
	}
	for snd, name := range files {
		data, err := os.ReadFile(filepath.Join(s.cfg.Assets.Dir, "sfx", name))
		if err != nil {
			logger.Warn("missing sound effect", zap.String("file", name))
			continue
		}
		s.sounds[snd] = data
	}
}

func (s *sparkScene) playSound(snd spark.Sound) {
	if s.audio == nil || s.cfg.Audio.Muted {
		return
	}
	if data, ok := s.sounds[snd]; ok {
		if err := s.audio.PlaySFX(data); err != nil {
			logger.Debug("sfx playback failed", zap.Error(err))
		}
	}
}

func (s *sparkScene) Update(a *game.App, dt float32) bool {
	in := a.Input()

	var move spark.Input
	if in.IsKeyDown(sdl.SCANCODE_LEFT) || in.IsKeyDown(sdl.SCANCODE_A) {
		move.MoveX -= 1
	}
	if in.IsKeyDown(sdl.SCANCODE_RIGHT) || in.IsKeyDown(sdl.SCANCODE_D) {
		move.MoveX += 1
	}
	if in.IsKeyDown(sdl.SCANCODE_DOWN) || in.IsKeyDown(sdl.SCANCODE_S) {
		move.MoveY -= 1
	}
	if in.IsKeyDown(sdl.SCANCODE_UP) || in.IsKeyDown(sdl.SCANCODE_W) {
		move.MoveY += 1
	}
	move.Fire = in.IsKeyDown(sdl.SCANCODE_SPACE)

	if s.game.GameOver && in.IsKeyPressed(sdl.SCANCODE_RETURN) {
		logger.Info("restarting", zap.Int("score", s.game.Score))
		gameCfg := spark.DefaultConfig()
		gameCfg.OnSound = s.playSound
		s.game = spark.New(gameCfg)
	}

	s.game.Update(dt, move)
	return true
}

func (s *sparkScene) Render(a *game.App) {
	gl.ClearColor(0.05, 0.05, 0.1, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	g := s.game
	// The playfield maps directly to the viewport.
	fieldW, fieldH := g.Bounds()
	viewProj := math.Ortho(0, fieldW, 0, fieldH, -1, 1)

	s.renderer.Begin(viewProj,
		[3]float32{0, 0, -1},
		[3]float32{1, 1, 1},
		[3]float32{0, 0, 0},
	)

	if g.Player.Lives > 0 {
		// Blink while invulnerable.
		if g.Player.Invuln <= 0 || int(g.Player.Invuln*10)%2 == 0 {
			s.drawShape(s.ship, g.Player.Pos, 0.7)
		}
	}
	for i := range g.Enemies {
		s.drawShape(s.enemy, g.Enemies[i].Pos, g.Enemies[i].Radius*2)
	}
	for i := range g.Bullets {
		b := &g.Bullets[i]
		shape := s.shot
		if b.Hostile {
			shape = s.bullet
		}
		s.drawShape(shape, b.Pos, b.Radius*2)
	}
}

func (s *sparkScene) drawShape(shape *flatShape, pos math.Vec2, size float32) {
	world := math.Translate(pos.X, pos.Y, 0).Mul(math.Scale(size, size, 1))
	s.renderer.DrawMesh(shape.model, shape.mesh, shape.prim, world)
}

func (s *sparkScene) Destroy() {
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.audio != nil {
		s.audio.Close()
	}
}
