package orion

import (
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/glimpse"
	"github.com/oliverbestmann/postfx/pulse"
)

type LoopState struct {
	Window   glimpse.Window
	App      App
	View     *pulse.View
	Renderer *pulse.Renderer
	Composer *fx.Composer

	SurfaceWidth  uint32
	SurfaceHeight uint32

	Times FrameTimes
	Stats fx.Stats
}

func loopOnce(loopState *LoopState, inputState glimpse.UpdateInputState) error {
	FrameProfile.StartFrame()

	// get surface size for next frame
	surfaceWidth, surfaceHeight := loopState.Window.GetSize()

	// reconfigure surface if needed
	if loopState.SurfaceWidth != surfaceWidth || loopState.SurfaceHeight != surfaceHeight {
		slog.Debug("Resize surface",
			slog.Int("width", int(surfaceWidth)),
			slog.Int("height", int(surfaceHeight)),
		)

		if err := loopState.View.Configure(surfaceWidth, surfaceHeight); err != nil {
			return err
		}

		loopState.Composer.Resize(int(surfaceWidth), int(surfaceHeight))

		loopState.SurfaceWidth = surfaceWidth
		loopState.SurfaceHeight = surfaceHeight
	}

	FrameProfile.StartGetCurrentTexture()

	// get the surface texture (the actual screen)
	screen, err := loopState.View.Acquire()
	if err != nil {
		return fmt.Errorf("acquire screen: %w", err)
	}

	// get input after waiting for a texture to keep input lag low
	currentInputState.reset()
	currentInputState.set(inputState())

	FrameProfile.StartUpdate()

	if loopState.Times.Tick() {
		loopState.Composer.UpdateStats(&loopState.Stats)
		FrameProfile.Report(slog.Default(), &loopState.Times, loopState.Stats)
	}

	if err := loopState.App.Update(&loopState.Times); err != nil {
		loopState.View.Present(screen)
		return fmt.Errorf("update app: %w", err)
	}

	FrameProfile.StartRender()

	loopState.Composer.Render(loopState.App.Scene(), loopState.App.Camera(), screen)

	// present the rendered image
	loopState.View.Present(screen)

	FrameProfile.EndFrame()

	releaseCollected()

	if err := loopState.Renderer.Err(); err != nil {
		return fmt.Errorf("render frame: %w", err)
	}

	return nil
}
