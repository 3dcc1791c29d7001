// Package game implements the shared application loop: window and GL
// context creation, input polling, frame timing, and dispatch into a
// Scene that holds the actual demo logic.
package game

import (
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/arclight3d/arclight/internal/engine/input"
	"github.com/arclight3d/arclight/internal/engine/window"
	"github.com/arclight3d/arclight/internal/logger"
)

// Scene is one demo's update and render logic. Init runs after the GL
// context exists; Update returning false ends the loop.
type Scene interface {
	Init(a *App) error
	Update(a *App, dt float32) bool
	Render(a *App)
	Destroy()
}

// Config holds application settings.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// App owns the window, input handler and frame loop.
type App struct {
	config Config

	window *window.Window
	input  *input.Input

	width  int
	height int

	running bool
}

// New creates the window and GL context. Call Run with a Scene to start.
func New(cfg Config) (*App, error) {
	logger.Info("initializing application",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)

	a := &App{
		config: cfg,
		width:  cfg.Width,
		height: cfg.Height,
	}

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Title,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Fullscreen: cfg.Fullscreen,
		VSync:      cfg.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Bind GL function pointers against the fresh context.
	if err := gl.Init(); err != nil {
		a.window.Close()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	a.width, a.height = a.window.DrawableSize()
	gl.Viewport(0, 0, int32(a.width), int32(a.height))

	a.input = input.New()
	return a, nil
}

// Input returns the input handler for the current frame.
func (a *App) Input() *input.Input { return a.input }

// Size returns the current drawable size.
func (a *App) Size() (int, int) { return a.width, a.height }

// Aspect returns the viewport aspect ratio.
func (a *App) Aspect() float32 {
	if a.height == 0 {
		return 1
	}
	return float32(a.width) / float32(a.height)
}

// Quit requests loop exit after the current frame.
func (a *App) Quit() { a.running = false }

// Run executes the frame loop until the scene or the window quits.
func (a *App) Run(scene Scene) error {
	if err := scene.Init(a); err != nil {
		return fmt.Errorf("scene init: %w", err)
	}
	defer scene.Destroy()

	a.running = true
	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	logger.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now
		// Clamp huge steps after window drags or debugger pauses.
		if dt > 0.1 {
			dt = 0.1
		}

		if a.input.Update() {
			break
		}
		for _, event := range a.input.Events() {
			switch event.Type {
			case input.EventWindowResize:
				// Resize events carry screen coordinates; query the
				// drawable size so high-DPI viewports stay correct.
				a.width, a.height = a.window.DrawableSize()
				gl.Viewport(0, 0, int32(a.width), int32(a.height))
			case input.EventKeyDown:
				if event.Key == 41 { // SDL_SCANCODE_ESCAPE
					a.running = false
				}
			}
		}

		if !scene.Update(a, dt) {
			a.running = false
		}

		scene.Render(a)
		a.window.SwapBuffers()

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			logger.Debug("fps", zap.Int("count", frameCount))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

// Close releases the window and GL context.
func (a *App) Close() {
	logger.Info("closing application")
	if a.window != nil {
		a.window.Close()
	}
}
