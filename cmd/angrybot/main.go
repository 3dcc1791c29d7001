// Command angrybot is a third-person character demo: WASD moves the
// robot, left mouse fires, dragging the right mouse button orbits the
// follow camera.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/arclight3d/arclight/internal/assets"
	"github.com/arclight3d/arclight/internal/config"
	"github.com/arclight3d/arclight/internal/engine/camera"
	"github.com/arclight3d/arclight/internal/engine/input"
	"github.com/arclight3d/arclight/internal/engine/model"
	"github.com/arclight3d/arclight/internal/engine/render"
	"github.com/arclight3d/arclight/internal/game"
	"github.com/arclight3d/arclight/internal/game/angrybot"
	"github.com/arclight3d/arclight/internal/logger"
	"github.com/arclight3d/arclight/pkg/gltf"
	"github.com/arclight3d/arclight/pkg/math"
)

const robotModel = "angrybot.glb"

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
		Title:      "Angry Bot",
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

	scene := &botScene{cfg: cfg}
	if err := app.Run(scene); err != nil {
		logger.Error("angrybot error", zap.Error(err))
		os.Exit(1)
	}
}

type botScene struct {
	cfg *config.Config

	renderer *render.ModelRenderer
	camera   *camera.ThirdPersonCamera

	robot  *model.Model
	player *angrybot.Player
	ground *model.Model

	rotating bool
}

func (s *botScene) Init(a *game.App) error {
	var err error
	s.renderer, err = render.NewModelRenderer()
	if err != nil {
		return err
	}
	s.camera = camera.NewThirdPersonCamera()

	path := filepath.Join(s.cfg.Assets.Dir, robotModel)
	doc, err := assets.NewManager().Load(path)
	if err != nil {
		return fmt.Errorf("load robot: %w", err)
	}
	s.robot, err = model.New(doc)
	if err != nil {
		return fmt.Errorf("build robot: %w", err)
	}
	s.renderer.LoadTextures(doc, filepath.Dir(path))

	s.player = angrybot.NewPlayer(s.robot.Animator, angrybot.DefaultClipNames())
	s.ground = groundPlane(40, [4]float32{0.25, 0.3, 0.25, 1})

	logger.Info("robot loaded",
		zap.String("path", path),
		zap.Int("clips", s.robot.Animator.ClipCount()),
	)
	return nil
}

func (s *botScene) Update(a *game.App, dt float32) bool {
	in := a.Input()

	for _, e := range in.Events() {
		switch e.Type {
		case input.EventMouseDown:
			if e.Button == sdl.BUTTON_RIGHT {
				s.rotating = true
			}
		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_RIGHT {
				s.rotating = false
			}
		case input.EventMouseMove:
			if s.rotating {
				s.camera.HandleYaw(float32(e.RelX))
			}
		case input.EventMouseWheel:
			s.camera.HandleZoom(float32(e.WheelY))
		}
	}

	// Movement is relative to the camera so "forward" always means away
	// from the viewer.
	fx, fz := s.camera.ForwardDirection()
	rx, rz := s.camera.RightDirection()

	var move math.Vec2
	if in.IsKeyDown(sdl.SCANCODE_W) {
		move.X += fx
		move.Y += fz
	}
	if in.IsKeyDown(sdl.SCANCODE_S) {
		move.X -= fx
		move.Y -= fz
	}
	if in.IsKeyDown(sdl.SCANCODE_D) {
		move.X += rx
		move.Y += rz
	}
	if in.IsKeyDown(sdl.SCANCODE_A) {
		move.X -= rx
		move.Y -= rz
	}

	shoot := false
	for _, e := range in.Events() {
		if e.Type == input.EventMouseDown && e.Button == sdl.BUTTON_LEFT {
			shoot = true
		}
	}

	s.player.Update(dt, angrybot.Input{MoveX: move.X, MoveZ: move.Y, Shoot: shoot})
	s.robot.UpdateAnimation(dt)
	return true
}

func (s *botScene) Render(a *game.App) {
	gl.ClearColor(0.4, 0.55, 0.7, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	p := s.player.Pos
	proj := math.Perspective(0.9, a.Aspect(), 0.05, 500)
	viewProj := proj.Mul(s.camera.ViewMatrix(p.X, p.Y, p.Z))

	s.renderer.Begin(viewProj,
		[3]float32{-0.4, -1, -0.3},
		[3]float32{0.4, 0.4, 0.4},
		[3]float32{0.85, 0.85, 0.8},
	)

	groundMesh := &s.ground.Meshes[0]
	s.renderer.DrawMesh(s.ground, groundMesh, &groundMesh.Primitives[0], math.Identity())

	s.robot.RenderAt(s.renderer, s.player.Transform())
}

func (s *botScene) Destroy() {
	if s.renderer != nil {
		s.renderer.Destroy()
	}
}

// groundPlane builds a flat solid-color square in the XZ plane, size
// units on a side, centered on the origin.
func groundPlane(size float32, color [4]float32) *model.Model {
	h := size / 2
	doc := &gltf.Document{
		Materials: []gltf.Material{{
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &color,
			},
			DoubleSided: true,
		}},
	}
	return &model.Model{
		Doc: doc,
		Meshes: []model.Mesh{{
			Name: "ground",
			Primitives: []model.Primitive{{
				Positions: [][3]float32{
					{-h, 0, -h},
					{-h, 0, h},
					{h, 0, h},
					{h, 0, -h},
				},
				Normals: [][3]float32{
					{0, 1, 0}, {0, 1, 0}, {0, 1, 0}, {0, 1, 0},
				},
				Indices:  []uint32{0, 1, 2, 0, 2, 3},
				Material: 0,
			}},
		}},
	}
}
