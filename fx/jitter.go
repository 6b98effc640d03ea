package fx

import (
	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

// CameraJitter offsets the projection by a sub pixel amount following
// a halton sequence. Accumulating effects use the frame counter to weigh
// history against the current frame.
type CameraJitter struct {
	frame       int
	totalFrames int

	// incremented by Reset
	resets int

	saved   glm.Mat4f
	applied bool
}

func NewCameraJitter(totalFrames int) *CameraJitter {
	return &CameraJitter{totalFrames: max(totalFrames, 1)}
}

// Update advances the sequence by one frame.
func (j *CameraJitter) Update() {
	j.frame = (j.frame + 1) % j.totalFrames
}

// Reset restarts the sequence, e.g. after the camera moved.
func (j *CameraJitter) Reset() {
	j.frame = 0
	j.resets++
}

// Resets counts the calls to Reset. Accumulating effects compare it to the
// value of their last frame to detect a restarted sequence.
func (j *CameraJitter) Resets() int {
	return j.resets
}

func (j *CameraJitter) Frame() int {
	return j.frame
}

func (j *CameraJitter) TotalFrames() int {
	return j.totalFrames
}

// Accumulating reports if the sequence did not yet wrap around.
func (j *CameraJitter) Accumulating() bool {
	return j.frame < j.totalFrames-1
}

// Offset returns the current offset in normalized device coordinates.
func (j *CameraJitter) Offset(width, height int) (dx, dy float32) {
	dx = (glm.Halton(j.frame+1, 2) - 0.5) * 2 / float32(max(width, 1))
	dy = (glm.Halton(j.frame+1, 3) - 0.5) * 2 / float32(max(height, 1))
	return
}

// Apply offsets the projection of the camera. Call Restore to undo.
func (j *CameraJitter) Apply(camera *render.Camera, width, height int) {
	if j.applied {
		return
	}

	dx, dy := j.Offset(width, height)

	j.saved = camera.Projection
	j.applied = true

	camera.Projection = camera.Projection.OffsetProjection(dx, dy)
}

func (j *CameraJitter) Restore(camera *render.Camera) {
	if !j.applied {
		return
	}

	camera.Projection = j.saved
	j.applied = false
}
