package capture

import (
	"encoding/hex"
	"fmt"
	"runtime"
	"strings"

	"github.com/gen2brain/malgo"

	"github.com/tphakala/keyclip/internal/logger"
)

// Device is an opened capture device.
type Device interface {
	Start() error
	Stop() error
	Close()
}

// Backend opens capture devices. onData receives interleaved S16LE frames
// from the audio thread and must not block.
type Backend interface {
	Open(config Config, onData func(pcm []byte)) (Device, DeviceInfo, error)
}

// DeviceInfo describes a capture device.
type DeviceInfo struct {
	Index     int
	Name      string
	ID        string
	IsDefault bool
}

// MalgoBackend captures through miniaudio.
type MalgoBackend struct {
	log logger.Logger
}

// NewMalgoBackend returns the platform capture backend.
func NewMalgoBackend(log logger.Logger) *MalgoBackend {
	if log == nil {
		log = logger.Global().Module(componentCapture)
	}
	return &MalgoBackend{log: log}
}

// platformBackend picks the miniaudio backend for the running OS. Other
// platforms let miniaudio choose.
func platformBackend() []malgo.Backend {
	switch runtime.GOOS {
	case "linux":
		return []malgo.Backend{malgo.BackendAlsa}
	case "windows":
		return []malgo.Backend{malgo.BackendWasapi}
	case "darwin":
		return []malgo.Backend{malgo.BackendCoreaudio}
	default:
		return nil
	}
}

func (b *MalgoBackend) initContext() (*malgo.AllocatedContext, error) {
	return malgo.InitContext(platformBackend(), malgo.ContextConfig{}, func(message string) {
		b.log.Trace("miniaudio", logger.String("message", strings.TrimSpace(message)))
	})
}

// ListDevices returns the available capture devices.
func (b *MalgoBackend) ListDevices() ([]DeviceInfo, error) {
	ctx, err := b.initContext()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to get devices: %w", err)
	}
	return describeDevices(b.log, infos), nil
}

// Open implements Backend.
func (b *MalgoBackend) Open(config Config, onData func(pcm []byte)) (Device, DeviceInfo, error) {
	ctx, err := b.initContext()
	if err != nil {
		return nil, DeviceInfo{}, fmt.Errorf("context init failed: %w", err)
	}
	release := func() {
		_ = ctx.Uninit()
		ctx.Free()
	}

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		release()
		return nil, DeviceInfo{}, fmt.Errorf("failed to get devices: %w", err)
	}

	idx, err := SelectDevice(describeDevices(b.log, infos), config.Device)
	if err != nil {
		release()
		return nil, DeviceInfo{}, err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(config.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(config.BufferFrames)
	deviceConfig.Alsa.NoMMap = 1
	deviceConfig.Capture.DeviceID = infos[idx].ID.Pointer()

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			onData(input)
		},
	})
	if err != nil {
		release()
		return nil, DeviceInfo{}, fmt.Errorf("device init failed: %w", err)
	}

	info := DeviceInfo{Index: idx, Name: infos[idx].Name(), IsDefault: infos[idx].IsDefault == 1}
	return &malgoDevice{device: device, release: release}, info, nil
}

type malgoDevice struct {
	device  *malgo.Device
	release func()
}

func (d *malgoDevice) Start() error { return d.device.Start() }
func (d *malgoDevice) Stop() error  { return d.device.Stop() }

func (d *malgoDevice) Close() {
	d.device.Uninit()
	d.release()
}

func describeDevices(log logger.Logger, infos []malgo.DeviceInfo) []DeviceInfo {
	devices := make([]DeviceInfo, 0, len(infos))
	for i := range infos {
		id, err := hexToASCII(infos[i].ID.String())
		if err != nil {
			log.Debug("failed to decode device id", logger.Int("index", i), logger.Error(err))
		}
		devices = append(devices, DeviceInfo{
			Index:     i,
			Name:      infos[i].Name(),
			ID:        id,
			IsDefault: infos[i].IsDefault == 1,
		})
	}
	return devices
}

// SelectDevice picks a device index for the configured name. An empty name,
// "default" or "sysdefault" selects the system default (or the first device
// when none is flagged). Otherwise an exact name or id match wins over a
// partial name match.
func SelectDevice(devices []DeviceInfo, name string) (int, error) {
	if len(devices) == 0 {
		return -1, fmt.Errorf("no capture devices found")
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "default", "sysdefault":
		for i := range devices {
			if devices[i].IsDefault {
				return i, nil
			}
		}
		return 0, nil
	}

	for i := range devices {
		if devices[i].Name == name || (devices[i].ID != "" && devices[i].ID == name) {
			return i, nil
		}
	}

	lower := strings.ToLower(name)
	for i := range devices {
		if strings.Contains(strings.ToLower(devices[i].Name), lower) {
			return i, nil
		}
	}

	return -1, fmt.Errorf("no capture device matches %q", name)
}

// hexToASCII converts a hexadecimal device id to its printable form.
func hexToASCII(hexStr string) (string, error) {
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}
