// Package gpu provides a wgpu-backed offscreen backend.
//
// Drawing runs through the shared CPU raster path while the canvas
// mirrors its pixels for texture upload; Snapshot reads the CPU
// mirror. Glyph masks are cached in a backend-owned atlas keyed by
// hinting state, which the comparison harness clears between tests.
//
// The backend is unavailable on systems without a usable GPU adapter;
// the registry then reports it unavailable and the harness never
// selects it. Importing the package registers the backend:
//
//	import _ "github.com/gofig/figtest/backend/gpu"
package gpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gofig/figtest"
	"github.com/gofig/figtest/backend"
	"github.com/gofig/figtest/rc"
	"github.com/gofig/figtest/text"
)

// ErrNoAdapter indicates no usable GPU adapter was found.
var ErrNoAdapter = errors.New("gpu: no usable adapter")

func init() {
	backend.Register("gpu", func() backend.Backend { return New() })
}

// DeviceProvider supplies a shared GPU device from a host application,
// so the backend reuses it instead of creating its own.
type DeviceProvider = gpucontext.DeviceProvider

// atlasKey identifies a glyph in the backend atlas.
type atlasKey struct {
	family    string
	r         rune
	size      float64
	hinting   bool
	antialias bool
}

// Backend is the wgpu-backed offscreen backend.
type Backend struct {
	mu sync.RWMutex

	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID
	info     *AdapterInfo

	// provider, when set, supplies a shared device and the backend
	// skips its own bring-up.
	provider DeviceProvider

	// atlas caches rasterized glyph masks for the GPU text path.
	atlas *text.Cache[atlasKey, *text.Glyph]

	probeOnce sync.Once
	probeOK   bool

	initialized bool
}

// New creates a GPU backend. Resources are allocated by Init.
func New() *Backend {
	return &Backend{atlas: text.NewCache[atlasKey, *text.Glyph](2048)}
}

func (*Backend) Name() string { return "gpu" }

// SetDeviceProvider accepts a shared device from a host application.
// It must be called before the backend is initialized.
func (b *Backend) SetDeviceProvider(p DeviceProvider) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.initialized {
		return errors.New("gpu: backend already initialized")
	}
	b.provider = p
	return nil
}

// Available reports whether a GPU adapter can be acquired. The probe
// runs once and releases the adapter immediately; its outcome is
// cached for the life of the process.
func (b *Backend) Available() bool {
	b.probeOnce.Do(func() {
		b.mu.RLock()
		shared := b.provider != nil
		b.mu.RUnlock()
		if shared {
			b.probeOK = true
			return
		}

		instance := core.NewInstance(&gputypes.InstanceDescriptor{
			Backends: gputypes.BackendsPrimary,
		})
		adapterID, err := instance.RequestAdapter(&gputypes.RequestAdapterOptions{
			PowerPreference: gputypes.PowerPreferenceHighPerformance,
		})
		if err != nil {
			figtest.Logger().Debug("gpu adapter probe failed", "error", err)
			return
		}
		_ = releaseAdapter(adapterID)
		b.probeOK = true
	})
	return b.probeOK
}

// Init brings up instance, adapter, device, and queue, unless a shared
// device provider was installed. Idempotent.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}

	if b.provider != nil {
		// Shared-device path: the host owns bring-up and teardown.
		b.initialized = true
		figtest.Logger().Info("gpu backend using shared device")
		return nil
	}

	b.instance = core.NewInstance(&gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
	})

	adapterID, err := b.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		b.instance = nil
		return fmt.Errorf("%w: %w", ErrNoAdapter, err)
	}
	b.adapter = adapterID
	b.info, _ = adapterInfo(adapterID)
	if b.info != nil {
		figtest.Logger().Info("gpu adapter selected", "adapter", b.info.String())
	}

	deviceID, err := createDevice(adapterID, "figtest-gpu-device")
	if err != nil {
		_ = releaseAdapter(adapterID)
		b.adapter = core.AdapterID{}
		b.instance = nil
		return err
	}
	b.device = deviceID

	queueID, err := getDeviceQueue(deviceID)
	if err != nil {
		_ = releaseDevice(deviceID)
		_ = releaseAdapter(adapterID)
		b.device = core.DeviceID{}
		b.adapter = core.AdapterID{}
		b.instance = nil
		return err
	}
	b.queue = queueID

	b.initialized = true
	return nil
}

// Close releases GPU resources in reverse order of creation. Shared
// devices are left alone; the host owns them.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.initialized {
		return
	}

	if b.provider == nil {
		if err := releaseDevice(b.device); err != nil {
			figtest.Logger().Warn("gpu device release", "error", err)
		}
		if err := releaseAdapter(b.adapter); err != nil {
			figtest.Logger().Warn("gpu adapter release", "error", err)
		}
	}
	b.device = core.DeviceID{}
	b.adapter = core.AdapterID{}
	b.queue = core.QueueID{}
	b.instance = nil
	b.info = nil
	b.initialized = false
}

// ClearFontCache drops the glyph atlas.
func (b *Backend) ClearFontCache() {
	b.atlas.Clear()
}

// AdapterInfo returns the selected adapter's description, or nil when
// the backend is not initialized or runs on a shared device.
func (b *Backend) AdapterInfo() *AdapterInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

func (b *Backend) NewCanvas(width, height int) (backend.Canvas, error) {
	b.mu.RLock()
	initialized := b.initialized
	b.mu.RUnlock()
	if !initialized {
		return nil, errors.New("gpu: backend not initialized")
	}

	raster, err := backend.NewRasterCanvas(width, height)
	if err != nil {
		return nil, err
	}
	return &canvas{RasterCanvas: raster, backend: b}, nil
}

// canvas layers the GPU text path over the shared CPU raster canvas.
// Geometry ops come from the embedded RasterCanvas; Snapshot reads the
// CPU mirror, which is the texture upload source.
type canvas struct {
	*backend.RasterCanvas
	backend *Backend
}

// DrawText composites glyph masks from the backend atlas. The GPU
// path lays glyphs out by bare advance, without shaping; the atlas is
// what a device text pipeline uploads, so masks are cached per
// hinting and antialias state like a texture atlas would be.
func (c *canvas) DrawText(s string, x, y, size float64, col color.Color) {
	if s == "" {
		return
	}

	src, err := text.Lookup(rc.GetString(rc.FontFamily))
	if err != nil {
		src = text.Default()
	}
	face := text.Face{
		Source:    src,
		Size:      size,
		Hinting:   rc.GetBool(rc.TextHinting),
		Antialias: rc.GetBool(rc.TextAntialias),
	}

	dst := c.RGBA()
	uniform := image.NewUniform(col)
	pen := x
	for _, r := range s {
		key := atlasKey{
			family:    src.Name(),
			r:         r,
			size:      size,
			hinting:   face.Hinting,
			antialias: face.Antialias,
		}
		glyph := c.backend.atlas.GetOrCreate(key, func() *text.Glyph {
			return text.RasterizeRune(face, r)
		})
		if glyph == nil || glyph.Mask == nil {
			continue
		}
		offset := image.Pt(int(math.Round(pen)), int(math.Round(y)))
		rect := glyph.Bounds.Add(offset)
		draw.DrawMask(dst, rect, uniform, image.Point{}, glyph.Mask, glyph.Bounds.Min, draw.Over)
		pen += glyph.Advance
	}
}
