package glimpse

import "github.com/oliverbestmann/webgpu/wgpu"

type Window interface {
	GetSize() (uint32, uint32)
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Run calls render until the window is closed or render returns an error.
	Run(render func(input UpdateInputState) error) error

	Terminate()
}
