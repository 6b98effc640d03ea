package orion

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/oliverbestmann/postfx/fx"
)

type frame struct {
	Total time.Duration

	GetCurrentTexture time.Duration
	Update            time.Duration
	Render            time.Duration
}

// FrameProfile measures the phases of each frame of the loop.
var FrameProfile frameProfile

type frameProfile struct {
	frameCount int
	frames     [60 * 10]frame

	timeStartFrame             time.Time
	timeStartGetCurrentTexture time.Time
	timeStartUpdate            time.Time
	timeStartRender            time.Time
	timeEndFrame               time.Time

	mem runtime.MemStats
}

func (d *frameProfile) StartFrame() {
	now := time.Now()

	if !d.timeStartFrame.IsZero() && !d.timeEndFrame.IsZero() {
		d.frames[d.frameCount%len(d.frames)] = frame{
			Total:             now.Sub(d.timeStartFrame),
			GetCurrentTexture: d.timeStartUpdate.Sub(d.timeStartGetCurrentTexture),
			Update:            d.timeStartRender.Sub(d.timeStartUpdate),
			Render:            d.timeEndFrame.Sub(d.timeStartRender),
		}

		d.frameCount += 1
	}

	d.timeStartFrame = now
}

func (d *frameProfile) StartGetCurrentTexture() {
	d.timeStartGetCurrentTexture = time.Now()
}

func (d *frameProfile) StartUpdate() {
	d.timeStartUpdate = time.Now()
}

func (d *frameProfile) StartRender() {
	d.timeStartRender = time.Now()
}

func (d *frameProfile) EndFrame() {
	d.timeEndFrame = time.Now()
}

// average returns the mean duration of each phase over the recorded frames.
func (d *frameProfile) average() frame {
	var sum frame
	var count time.Duration

	for _, frame := range d.frames {
		if frame.Total <= 0 {
			continue
		}

		sum.Total += frame.Total
		sum.GetCurrentTexture += frame.GetCurrentTexture
		sum.Update += frame.Update
		sum.Render += frame.Render
		count++
	}

	if count == 0 {
		return frame{}
	}

	return frame{
		Total:             sum.Total / count,
		GetCurrentTexture: sum.GetCurrentTexture / count,
		Update:            sum.Update / count,
		Render:            sum.Render / count,
	}
}

// Report logs frame timings, memory and composer statistics.
func (d *frameProfile) Report(logger *slog.Logger, times *FrameTimes, stats fx.Stats) {
	runtime.ReadMemStats(&d.mem)

	lastCycle := (d.mem.NumGC + 255) % 256
	lastCycleDur := time.Duration(d.mem.PauseNs[lastCycle])

	avg := d.average()

	logger.Debug("Frame stats",
		slog.Float64("fps", times.FPS()),
		slog.Duration("max", times.MaxDuration),
		slog.Group("phases",
			slog.Duration("texture", avg.GetCurrentTexture),
			slog.Duration("update", avg.Update),
			slog.Duration("render", avg.Render),
		),
		slog.Group("composer",
			slog.Int("buffers", stats.Buffers),
			slog.Int("effects", stats.Effects),
			slog.Float64("fboCache", float64(stats.FBOCache)),
		),
		slog.Group("memory",
			slog.Uint64("heapObjects", d.mem.HeapObjects),
			slog.Uint64("heapInUse", d.mem.HeapInuse),
			slog.Uint64("gcCycles", uint64(d.mem.NumGC)),
			slog.Duration("gcPause", lastCycleDur),
		),
	)
}
