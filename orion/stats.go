package orion

import (
	"time"
)

// frames between two reports of Tick
const reportInterval = 60

// FrameTimes tracks the duration of the frames of the loop.
type FrameTimes struct {
	FrameCount      uint64
	AverageDuration time.Duration
	MaxDuration     time.Duration

	// Delta time to previous frame
	Delta time.Duration

	// Time since the first frame
	Elapsed time.Duration

	lastTime time.Time
}

func (t *FrameTimes) update(d time.Duration) {
	const window = 64

	t.Delta = d
	t.Elapsed += d
	t.MaxDuration = max(t.MaxDuration, d)

	// average over a short warm up, then smooth exponentially
	if t.FrameCount < window/2 {
		t.AverageDuration = (t.AverageDuration*time.Duration(t.FrameCount) + d) / time.Duration(t.FrameCount+1)
	} else {
		t.AverageDuration = ((window-1)*t.AverageDuration + d) / window
	}
}

func (t *FrameTimes) FPS() float64 {
	if t.AverageDuration <= 0 {
		return 0
	}

	return 1.0 / t.AverageDuration.Seconds()
}

// Tick records a new frame. Returns true every reportInterval frames.
func (t *FrameTimes) Tick() bool {
	now := time.Now()

	if t.FrameCount > 0 {
		dt := now.Sub(t.lastTime)
		t.update(dt)
	}

	t.lastTime = now
	t.FrameCount += 1

	return t.FrameCount%reportInterval == 0
}
