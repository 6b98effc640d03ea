package pulse

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/oliverbestmann/webgpu/wgpu"
)

var forceFallbackAdapter = os.Getenv("WGPU_FORCE_FALLBACK_ADAPTER") == "1"

func init() {
	runtime.LockOSThread()

	if level, ok := logLevelOf(os.Getenv("WGPU_LOG_LEVEL")); ok {
		wgpu.SetLogLevel(level)
	}
}

// logLevelOf parses the name of a wgpu log level, ignoring case.
func logLevelOf(name string) (wgpu.LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "OFF":
		return wgpu.LogLevelOff, true
	case "ERROR":
		return wgpu.LogLevelError, true
	case "WARN":
		return wgpu.LogLevelWarn, true
	case "INFO":
		return wgpu.LogLevelInfo, true
	case "DEBUG":
		return wgpu.LogLevelDebug, true
	case "TRACE":
		return wgpu.LogLevelTrace, true
	default:
		return 0, false
	}
}

// Context bundles the device, its queue and the surface the composer
// presents to.
type Context struct {
	*wgpu.Device
	*wgpu.Queue
	Surface *wgpu.Surface
	Adapter *wgpu.Adapter
}

// New requests an adapter and a device that can present to the surface
// described by sd. A partially initialized context is released on error.
func New(sd *wgpu.SurfaceDescriptor) (ctx *Context, err error) {
	ctx = &Context{}

	defer func() {
		if err != nil {
			ctx.Release()
			ctx = nil
		}
	}()

	instance := wgpu.CreateInstance(nil)
	defer instance.Release()

	ctx.Surface = instance.CreateSurface(sd)
	if ctx.Surface == nil {
		return ctx, errors.New("create surface: no surface for descriptor")
	}

	ctx.Adapter, err = instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    ctx.Surface,
	})

	if err != nil {
		return ctx, fmt.Errorf("request adapter: %w", err)
	}

	info := ctx.Adapter.GetInfo()
	slog.Info(
		"Selected graphics adapter",
		slog.String("device", info.Device),
		slog.String("backend", info.BackendType.String()),
		slog.String("type", info.AdapterType.String()),
	)

	ctx.Device, err = ctx.Adapter.RequestDevice(nil)
	if err != nil {
		return ctx, fmt.Errorf("request device: %w", err)
	}

	ctx.Queue = ctx.Device.GetQueue()

	return ctx, nil
}

// Release frees all resources in reverse order of creation. It is safe to
// call on a partially initialized context.
func (ctx *Context) Release() {
	if ctx.Queue != nil {
		ctx.Queue.Release()
		ctx.Queue = nil
	}

	if ctx.Device != nil {
		ctx.Device.Release()
		ctx.Device = nil
	}

	if ctx.Adapter != nil {
		ctx.Adapter.Release()
		ctx.Adapter = nil
	}

	if ctx.Surface != nil {
		ctx.Surface.Release()
		ctx.Surface = nil
	}
}
