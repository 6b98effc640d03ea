package orion

import (
	"github.com/oliverbestmann/postfx/fx"
	"github.com/oliverbestmann/postfx/pulse"
	"github.com/oliverbestmann/postfx/render"
)

// App is run by RunApp. Each frame Update is called, then the scene is
// rendered through the composer as seen by the camera.
type App interface {
	// Initialize is called once before the first frame.
	Initialize(r *pulse.Renderer, composer *fx.Composer) error

	Update(times *FrameTimes) error

	Scene() render.Scene
	Camera() *render.Camera
}
