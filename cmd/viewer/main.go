// Command viewer is an interactive glTF model viewer: orbit camera,
// animation playback controls and a file-open dialog.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/arclight3d/arclight/internal/assets"
	"github.com/arclight3d/arclight/internal/config"
	"github.com/arclight3d/arclight/internal/engine/animation"
	"github.com/arclight3d/arclight/internal/engine/camera"
	"github.com/arclight3d/arclight/internal/engine/debug"
	"github.com/arclight3d/arclight/internal/engine/input"
	"github.com/arclight3d/arclight/internal/engine/model"
	"github.com/arclight3d/arclight/internal/engine/render"
	"github.com/arclight3d/arclight/internal/game"
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

	path := flag.Arg(0)
	if path == "" && cfg.Assets.DefaultModel != "" {
		path = filepath.Join(cfg.Assets.Dir, cfg.Assets.DefaultModel)
	}

	app, err := game.New(game.Config{
		Title:      "ArcLight Viewer",
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

	scene := &viewerScene{modelPath: path}
	if err := app.Run(scene); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}
}

type viewerScene struct {
	modelPath string

	manager    *assets.Manager
	renderer   *render.ModelRenderer
	camera     *camera.OrbitCamera
	screenshot *debug.ScreenshotCapture
	capture    bool

	model     *model.Model
	clip      int
	scrubTime float32

	dragging bool
	paused   bool
}

func (s *viewerScene) Init(a *game.App) error {
	var err error
	s.renderer, err = render.NewModelRenderer()
	if err != nil {
		return err
	}
	s.manager = assets.NewManager()
	s.camera = camera.NewOrbitCamera()
	s.screenshot = debug.NewScreenshotCapture("screenshots", "viewer")

	if s.modelPath == "" {
		path, err := dialog.File().
			Title("Open Model").
			Filter("glTF models", "gltf", "glb").
			Load()
		if err != nil {
			return fmt.Errorf("no model selected: %w", err)
		}
		s.modelPath = path
	}
	return s.open(s.modelPath)
}

func (s *viewerScene) open(path string) error {
	doc, err := s.manager.Load(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	m, err := model.New(doc)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	s.renderer.LoadTextures(doc, filepath.Dir(path))

	s.model = m
	s.modelPath = path
	s.clip = 0
	s.scrubTime = 0
	s.paused = false
	if m.Animator.ClipCount() > 0 {
		m.Animator.Play(0, animation.LoopForever)
	}

	var min, max math.Vec3
	first := true
	for _, mesh := range m.Meshes {
		if first {
			min, max = mesh.Bounds.Min, mesh.Bounds.Max
			first = false
			continue
		}
		b := mesh.Bounds
		if b.Min.X < min.X {
			min.X = b.Min.X
		}
		if b.Min.Y < min.Y {
			min.Y = b.Min.Y
		}
		if b.Min.Z < min.Z {
			min.Z = b.Min.Z
		}
		if b.Max.X > max.X {
			max.X = b.Max.X
		}
		if b.Max.Y > max.Y {
			max.Y = b.Max.Y
		}
		if b.Max.Z > max.Z {
			max.Z = b.Max.Z
		}
	}
	if !first {
		s.camera.FitToBounds(min.X, min.Y, min.Z, max.X, max.Y, max.Z)
	}

	logger.Info("model loaded",
		zap.String("path", path),
		zap.Int("meshes", len(m.Meshes)),
		zap.Int("clips", m.Animator.ClipCount()),
	)
	return nil
}

func (s *viewerScene) Update(a *game.App, dt float32) bool {
	in := a.Input()

	for _, e := range in.Events() {
		switch e.Type {
		case input.EventMouseDown:
			if e.Button == sdl.BUTTON_LEFT {
				s.dragging = true
			}
		case input.EventMouseUp:
			if e.Button == sdl.BUTTON_LEFT {
				s.dragging = false
			}
		case input.EventMouseMove:
			if s.dragging {
				s.camera.HandleDrag(float32(e.RelX), float32(e.RelY))
			}
		case input.EventMouseWheel:
			s.camera.HandleZoom(float32(e.WheelY))
		case input.EventKeyDown:
			s.handleKey(e.Key)
		}
	}

	anim := s.model.Animator

	// Arrow keys scrub the active clip while paused.
	if s.paused && anim.ClipCount() > 0 {
		scrub := float32(0)
		if in.IsKeyDown(sdl.SCANCODE_RIGHT) {
			scrub += dt
		}
		if in.IsKeyDown(sdl.SCANCODE_LEFT) {
			scrub -= dt
		}
		if scrub != 0 {
			s.scrub(scrub)
		}
	}

	if !s.paused {
		s.model.UpdateAnimation(dt)
	}
	return true
}

func (s *viewerScene) handleKey(key sdl.Scancode) {
	anim := s.model.Animator
	switch key {
	case sdl.SCANCODE_O:
		path, err := dialog.File().
			Title("Open Model").
			Filter("glTF models", "gltf", "glb").
			Load()
		if err == nil {
			if err := s.open(path); err != nil {
				logger.Error("failed to open model", zap.Error(err))
			}
		}
	case sdl.SCANCODE_SPACE:
		s.paused = !s.paused
	case sdl.SCANCODE_N:
		if anim.ClipCount() > 0 {
			s.clip = (s.clip + 1) % anim.ClipCount()
			s.scrubTime = 0
			anim.Play(s.clip, animation.LoopForever)
			logger.Info("playing clip",
				zap.Int("index", s.clip),
				zap.String("name", anim.ClipName(s.clip)),
			)
		}
	case sdl.SCANCODE_P:
		if anim.ClipCount() > 0 {
			anim.PlayAll()
			logger.Info("playing all clips")
		}
	case sdl.SCANCODE_S:
		anim.Stop()
	case sdl.SCANCODE_F12:
		s.capture = true
	}
}

// scrub advances or rewinds the active clip by delta seconds, wrapping
// within the clip duration.
func (s *viewerScene) scrub(delta float32) {
	anim := s.model.Animator
	dur := anim.Duration(s.clip)
	if dur <= 0 {
		return
	}
	s.scrubTime += delta
	for s.scrubTime < 0 {
		s.scrubTime += dur
	}
	for s.scrubTime > dur {
		s.scrubTime -= dur
	}
	anim.Seek(s.scrubTime)
}

func (s *viewerScene) Render(a *game.App) {
	gl.ClearColor(0.12, 0.12, 0.15, 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	proj := math.Perspective(0.9, a.Aspect(), 0.05, 500)
	viewProj := proj.Mul(s.camera.ViewMatrix())

	s.renderer.Begin(viewProj,
		[3]float32{-0.4, -1, -0.3},
		[3]float32{0.35, 0.35, 0.35},
		[3]float32{0.9, 0.9, 0.9},
	)
	s.model.Render(s.renderer)

	if s.capture {
		s.capture = false
		w, h := a.Size()
		pixels := make([]byte, w*h*4)
		gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
		if name, err := s.screenshot.CaptureFromPixels(pixels, w, h); err != nil {
			logger.Error("screenshot failed", zap.Error(err))
		} else {
			logger.Info("screenshot saved", zap.String("file", name))
		}
	}
}

func (s *viewerScene) Destroy() {
	if s.renderer != nil {
		s.renderer.Destroy()
	}
}
