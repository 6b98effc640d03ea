package fx

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/oliverbestmann/postfx/glm"
	"github.com/oliverbestmann/postfx/render"
)

type ComposerOptions struct {
	Width  int
	Height int

	// Use half float targets.
	HDR bool

	// Render the scene buffer with multisampling.
	MSAA bool

	// Number of targets of each mark buffer, defaults to 5.
	MaxMarkAttachments int

	// The scene writes logarithmic depth values.
	LogarithmicDepth bool

	// Length of the camera jitter sequence, defaults to 30.
	JitterFrames int

	// Defaults to slog.Default()
	Logger *slog.Logger
}

func (opts ComposerOptions) withDefaults() ComposerOptions {
	opts.Width = max(opts.Width, 1)
	opts.Height = max(opts.Height, 1)

	if opts.MaxMarkAttachments == 0 {
		opts.MaxMarkAttachments = 5
	}

	if opts.JitterFrames == 0 {
		opts.JitterFrames = 30
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return opts
}

// Composer renders a scene through a chain of effects.
type Composer struct {
	// Clear the destination target before the final pass.
	ClearColor   bool
	ClearDepth   bool
	ClearStencil bool

	renderer render.Renderer
	opts     ComposerOptions
	logger   *slog.Logger

	width, height int

	cache *RenderTargetCache

	buffers     map[string]Buffer
	bufferOrder []string
	sceneBuffer *SceneBuffer

	// sorted by order, stable in registration order
	effects    []Effect
	nextHandle render.EffectHandle

	debugger Debugger
	jitter   *CameraJitter

	externalColor render.Surface
	externalDepth render.Surface

	copyPass *render.ShaderPass

	// per frame state
	frameClearColor render.Color
	frameViewport   glm.Rect
	used            map[string]bool
	active          []Effect
	pingPong        pingPong
	frameStats      Stats
}

// NewComposer creates a composer and registers the scene buffer, the gbuffer
// and the three mark buffers.
func NewComposer(r render.Renderer, opts ComposerOptions) *Composer {
	opts = opts.withDefaults()

	c := &Composer{
		ClearColor:   true,
		ClearDepth:   true,
		ClearStencil: true,

		renderer: r,
		opts:     opts,
		logger:   opts.Logger,
		width:    opts.Width,
		height:   opts.Height,

		cache:    NewRenderTargetCache(r, opts.Width, opts.Height, opts.HDR),
		buffers:  map[string]Buffer{},
		jitter:   NewCameraJitter(opts.JitterFrames),
		copyPass: render.NewShaderPass(CopyProgram),
		used:     map[string]bool{},
	}

	c.cache.SetLogger(c.logger)

	c.sceneBuffer = NewSceneBuffer(r, c.width, c.height, SceneBufferOptions{
		HDR:  opts.HDR,
		MSAA: opts.MSAA,
	})

	c.AddBuffer(KeySceneBuffer, c.sceneBuffer)
	c.AddBuffer(KeyGBuffer, NewGBuffer(r, c.width, c.height, opts.LogarithmicDepth))

	for _, kind := range []MarkKind{MarkNonDepth, MarkDepth, MarkColor} {
		c.AddBuffer(kind.Key(), NewMarkBuffer(r, c.width, c.height, kind, opts.MaxMarkAttachments))
	}

	c.logger.Info("Created effect composer",
		slog.Int("width", c.width),
		slog.Int("height", c.height),
		slog.Bool("hdr", opts.HDR),
		slog.Bool("msaa", opts.MSAA),
	)

	return c
}

// AddBuffer registers a buffer. Returns false if the key is already in use.
func (c *Composer) AddBuffer(key string, buffer Buffer) bool {
	if _, exists := c.buffers[key]; exists {
		c.logger.Error("Buffer already registered", slog.String("key", key))
		return false
	}

	buffer.Resize(c.width, c.height)

	c.buffers[key] = buffer
	c.bufferOrder = append(c.bufferOrder, key)

	return true
}

// Buffer returns the buffer registered with the key, or nil.
func (c *Composer) Buffer(key string) Buffer {
	return c.buffers[key]
}

// SceneBuffer returns the buffer registered as KeySceneBuffer.
func (c *Composer) SceneBuffer() *SceneBuffer {
	return c.sceneBuffer
}

// AddEffect registers an effect. Effects run in ascending order, effects with
// the same order run in registration order. Returns false if the name is
// already in use.
func (c *Composer) AddEffect(name string, effect Effect, order int) bool {
	if c.Effect(name) != nil {
		c.logger.Error("Effect already registered", slog.String("name", name))
		return false
	}

	for _, dep := range effect.State().Dependencies {
		if _, ok := c.buffers[dep.Key]; !ok {
			c.logger.Warn("Effect depends on unknown buffer",
				slog.String("name", name),
				slog.String("buffer", dep.Key),
			)
		}
	}

	c.nextHandle++

	state := effect.State()
	state.name = name
	state.order = order
	state.handle = c.nextHandle

	effect.Resize(c.width, c.height)

	c.effects = append(c.effects, effect)

	slices.SortStableFunc(c.effects, func(a, b Effect) int {
		return cmp.Compare(a.State().order, b.State().order)
	})

	return true
}

// RemoveEffect unregisters the effect and returns it. The effect is not disposed.
func (c *Composer) RemoveEffect(name string) Effect {
	idx := slices.IndexFunc(c.effects, func(effect Effect) bool {
		return effect.State().name == name
	})

	if idx < 0 {
		return nil
	}

	effect := c.effects[idx]
	c.effects = slices.Delete(c.effects, idx, idx+1)

	state := effect.State()
	state.name = ""
	state.handle = 0

	return effect
}

// Effect returns the effect registered with the name, or nil.
func (c *Composer) Effect(name string) Effect {
	for _, effect := range c.effects {
		if effect.State().name == name {
			return effect
		}
	}

	return nil
}

// Effects returns all effects in execution order.
func (c *Composer) Effects() []Effect {
	return slices.Clone(c.effects)
}

func (c *Composer) effectHandle(name string) (render.EffectHandle, bool) {
	effect := c.Effect(name)
	if effect == nil {
		return 0, false
	}

	return effect.State().handle, true
}

// SetDebugger replaces the effect chain with the debugger. Pass nil to
// go back to the effect chain.
func (c *Composer) SetDebugger(debugger Debugger) {
	if debugger != nil {
		debugger.Resize(c.width, c.height)
	}

	c.debugger = debugger
}

func (c *Composer) Debugger() Debugger {
	return c.debugger
}

// SetExternalColorAttachment makes the scene buffer render into the given surface.
// If external attachments are set and no effect is active, the scene buffer is
// copied into the destination instead of rendering the scene directly.
func (c *Composer) SetExternalColorAttachment(surface render.Surface) {
	c.externalColor = surface
	c.sceneBuffer.SetColorAttachment(surface)
}

// SetExternalDepthAttachment makes the scene buffer use the given depth surface.
func (c *Composer) SetExternalDepthAttachment(surface render.Surface) {
	c.externalDepth = surface
	c.sceneBuffer.SetDepthAttachment(surface)
}

func (c *Composer) hasExternalAttachment() bool {
	return c.externalColor != nil || c.externalDepth != nil
}

// Render draws the scene as seen by camera into target.
func (c *Composer) Render(scene render.Scene, camera *render.Camera, target render.RenderTarget) {
	r := c.renderer

	c.frameStats = Stats{Frames: c.frameStats.Frames + 1}

	c.frameClearColor = r.ClearColor()
	c.frameViewport = camera.Rect
	camera.Rect = glm.FullRect

	defer func() {
		c.jitter.Restore(camera)
		r.SetClearColor(c.frameClearColor)
		camera.Rect = c.frameViewport
	}()

	clear(c.used)

	for _, key := range c.bufferOrder {
		if buffer, ok := c.buffers[key].(AttachBuffer); ok {
			buffer.Attachments().Reset()
		}
	}

	c.collectActive()

	switch {
	case c.debugger != nil:
		c.renderDebug(scene, camera, target)

	case len(c.active) == 0 && c.hasExternalAttachment():
		c.jitter.Reset()
		c.renderExternalCopy(scene, camera, target)

	case len(c.active) == 0:
		c.jitter.Reset()
		c.renderDirect(scene, camera, target)

	default:
		c.renderChain(scene, camera, target)
	}
}

func (c *Composer) collectActive() {
	clear(c.active)
	c.active = c.active[:0]

	for _, effect := range c.effects {
		if effect.State().Active {
			c.active = append(c.active, effect)
		}
	}
}

// allocateChannels assigns the channels of attach buffers to the active effects.
// If markUsed is set, all dependencies are scheduled for rendering.
func (c *Composer) allocateChannels(markUsed bool) {
	for _, effect := range c.active {
		state := effect.State()

		for _, dep := range state.Dependencies {
			buffer, ok := c.buffers[dep.Key]
			if !ok {
				continue
			}

			if markUsed {
				c.used[dep.Key] = true
			}

			if attach, ok := buffer.(AttachBuffer); ok {
				attach.Attachments().Allocate(state.name, dep.Mask)
			}
		}
	}
}

// renderBuffers renders all used buffers once, in registration order.
func (c *Composer) renderBuffers(scene render.Scene, camera *render.Camera) {
	for _, key := range c.bufferOrder {
		if !c.used[key] {
			continue
		}

		c.buffers[key].Render(c.renderer, c, scene, camera)
		c.frameStats.Buffers++
	}
}

func (c *Composer) renderDebug(scene render.Scene, camera *render.Camera, target render.RenderTarget) {
	c.jitter.Reset()

	// effects keep their channels, a debugger might want to show them
	c.allocateChannels(false)

	for _, dep := range c.debugger.Dependencies() {
		if _, ok := c.buffers[dep.Key]; ok {
			c.used[dep.Key] = true
		}
	}

	c.renderBuffers(scene, camera)

	c.debugger.Render(c.renderer, c, target)
}

func (c *Composer) renderExternalCopy(scene render.Scene, camera *render.Camera, target render.RenderTarget) {
	c.used[KeySceneBuffer] = true
	c.renderBuffers(scene, camera)

	c.copyPass.Uniforms["tDiffuse"] = c.sceneBuffer.Output()
	c.SetEffectContextStates(target, c.copyPass, true)
	c.renderer.Draw(c.copyPass)
}

func (c *Composer) renderDirect(scene render.Scene, camera *render.Camera, target render.RenderTarget) {
	r := c.renderer

	camera.Rect = c.frameViewport

	r.SetRenderTarget(target)
	r.SetClearColor(c.frameClearColor)

	if c.ClearColor || c.ClearDepth || c.ClearStencil {
		r.Clear(c.ClearColor, c.ClearDepth, c.ClearStencil)
	}

	c.sceneBuffer.RenderScene(r, c, scene, camera)
}

func (c *Composer) renderChain(scene render.Scene, camera *render.Camera, target render.RenderTarget) {
	r := c.renderer

	useJitter := slices.ContainsFunc(c.active, func(effect Effect) bool {
		return effect.State().NeedCameraJitter
	})

	if useJitter {
		c.jitter.Update()
		c.jitter.Apply(camera, c.width, c.height)
	} else {
		c.jitter.Reset()
	}

	c.used[KeySceneBuffer] = true
	c.allocateChannels(true)
	c.renderBuffers(scene, camera)

	// effects work with the unjittered camera
	c.jitter.Restore(camera)

	c.pingPong.acquire(c.cache)
	defer c.pingPong.release(c.cache)

	last := len(c.active) - 1

	for idx, effect := range c.active {
		input := c.sceneBuffer.Output()
		if idx > 0 {
			input = c.pingPong.Input()
		}

		output := c.pingPong.Output()
		if idx == last {
			output = target
		}

		effect.Render(r, c, input, output, idx == last)
		c.frameStats.Effects++

		c.pingPong.Swap()
	}
}

// SetEffectContextStates binds output and prepares pass for drawing. An
// intermediate pass clears the output and covers it fully. The final pass
// restores the clear color and viewport of the frame and blends over the
// destination if it is not cleared to an opaque color.
func (c *Composer) SetEffectContextStates(output render.RenderTarget, pass *render.ShaderPass, final bool) {
	r := c.renderer

	r.SetRenderTarget(output)

	if !final {
		r.SetClearColor(render.ColorTransparent)
		r.Clear(true, true, false)

		pass.Viewport = glm.FullRect
		pass.Blending = render.BlendNone
		return
	}

	r.SetClearColor(c.frameClearColor)

	if c.ClearColor || c.ClearDepth || c.ClearStencil {
		r.Clear(c.ClearColor, c.ClearDepth, c.ClearStencil)
	}

	pass.Viewport = c.frameViewport

	if c.frameClearColor.Alpha() < 1 || !c.ClearColor {
		pass.Blending = render.BlendPremultiplied
	} else {
		pass.Blending = render.BlendNone
	}
}

// Resize resizes all buffers, effects and pooled targets.
func (c *Composer) Resize(width, height int) {
	width = max(width, 1)
	height = max(height, 1)

	// buffers are resized and rerendered even if the size did not change
	if width != c.width || height != c.height {
		c.logger.Info("Resize effect composer",
			slog.Int("width", width),
			slog.Int("height", height),
		)
	}

	c.width = width
	c.height = height

	c.cache.Resize(width, height)

	for _, key := range c.bufferOrder {
		c.buffers[key].Resize(width, height)
	}

	for _, effect := range c.effects {
		effect.Resize(width, height)
	}

	if c.debugger != nil {
		c.debugger.Resize(width, height)
	}
}

// Dispose releases all buffers, effects, the debugger and pooled targets.
func (c *Composer) Dispose() {
	for _, key := range c.bufferOrder {
		c.buffers[key].Dispose()
	}

	for _, effect := range c.effects {
		effect.Dispose()
	}

	if c.debugger != nil {
		c.debugger.Dispose()
	}

	c.cache.Dispose()
}

func (c *Composer) Size() (width, height int) {
	return c.width, c.height
}

func (c *Composer) Renderer() render.Renderer {
	return c.renderer
}

func (c *Composer) RenderTargetCache() *RenderTargetCache {
	return c.cache
}

func (c *Composer) MSAA() bool {
	return c.opts.MSAA
}

func (c *Composer) HDR() bool {
	return c.opts.HDR
}

func (c *Composer) CameraJitter() *CameraJitter {
	return c.jitter
}

func (c *Composer) Logger() *slog.Logger {
	return c.logger
}

// UpdateStats reports the state of the pool and the work of the last frame.
func (c *Composer) UpdateStats(stats *Stats) {
	c.cache.UpdateStats(stats)

	stats.Buffers = c.frameStats.Buffers
	stats.Effects = c.frameStats.Effects
	stats.Frames = c.frameStats.Frames
}
