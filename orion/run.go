package orion

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glimpse"
	"github.com/oliverbestmann/postfx/pulse"
	"github.com/pkg/profile"
)

type ProfileMode uint8

const (
	ProfileNone ProfileMode = iota
	ProfileCPU
	ProfileMemory
)

type RunAppOptions struct {
	// app to run. This is the only field that is required
	App App

	WindowWidth  int
	WindowHeight int
	WindowTitle  string

	// Options of the composer. Width and Height are taken from the window.
	Composer fx.ComposerOptions

	Profile ProfileMode
}

func (opts RunAppOptions) withDefaults() RunAppOptions {
	if opts.WindowWidth == 0 {
		opts.WindowWidth = 1000
	}

	if opts.WindowHeight == 0 {
		opts.WindowHeight = 600
	}

	if opts.WindowTitle == "" {
		opts.WindowTitle = "postfx"
	}

	return opts
}

func RunApp(opts RunAppOptions) error {
	if opts.App == nil {
		return errors.New("App must not be nil")
	}

	opts = opts.withDefaults()

	switch opts.Profile {
	case ProfileCPU:
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	case ProfileMemory:
		defer profile.Start(profile.MemProfile, profile.ProfilePath(".")).Stop()
	}

	// create a new window
	win, err := glimpse.NewWindow(
		opts.WindowWidth,
		opts.WindowHeight,
		opts.WindowTitle,
	)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	defer win.Terminate()

	// initialize the webgpu device
	ctx, err := pulse.New(win.SurfaceDescriptor())
	if err != nil {
		return fmt.Errorf("initializing wgpu: %w", err)
	}

	defer ctx.Release()

	view, err := pulse.NewView(ctx)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}

	defer view.Release()

	renderer, err := pulse.NewRenderer(ctx, pulse.RendererOptions{Logger: opts.Composer.Logger})
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}

	defer renderer.Release()

	width, height := win.GetSize()

	composerOpts := opts.Composer
	composerOpts.Width = int(width)
	composerOpts.Height = int(height)

	composer := fx.NewComposer(renderer, composerOpts)
	defer composer.Dispose()

	currentWindow.set(win)
	defer currentWindow.reset()

	if err := opts.App.Initialize(renderer, composer); err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}

	loopState := &LoopState{
		Window:   win,
		App:      opts.App,
		View:     view,
		Renderer: renderer,
		Composer: composer,
	}

	err = win.Run(func(inputState glimpse.UpdateInputState) error {
		return loopOnce(loopState, inputState)
	})

	slog.Info("Stopped app", slog.Uint64("frames", loopState.Times.FrameCount))

	return err
}
