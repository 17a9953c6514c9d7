package sink

import (
	"fmt"
	"log"

	"github.com/gen2brain/malgo"
)

// MalgoOutput opens playback devices through miniaudio.
type MalgoOutput struct {
	ctx *malgo.AllocatedContext
}

// NewMalgoOutput initializes a miniaudio context on the default backend.
func NewMalgoOutput() (*MalgoOutput, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		log.Printf("miniaudio: %s", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}

	return &MalgoOutput{ctx: ctx}, nil
}

// Open implements Output with a float32 playback device on the default
// output.
func (m *MalgoOutput) Open(channels, sampleRate int, fill func(out []byte, frames uint32)) (Player, error) {
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = uint32(channels)
	cfg.SampleRate = uint32(sampleRate)
	cfg.Alsa.NoMMap = 1

	dev, err := malgo.InitDevice(m.ctx.Context, cfg, malgo.DeviceCallbacks{
		Data: func(out, _ []byte, frames uint32) {
			fill(out, frames)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init playback device: %w", err)
	}

	return &malgoPlayer{dev: dev}, nil
}

// Close releases the context.
func (m *MalgoOutput) Close() error {
	if err := m.ctx.Uninit(); err != nil {
		return fmt.Errorf("failed to uninit audio context: %w", err)
	}

	m.ctx.Free()

	return nil
}

type malgoPlayer struct {
	dev *malgo.Device
}

func (p *malgoPlayer) Start() error {
	return p.dev.Start()
}

func (p *malgoPlayer) Close() error {
	err := p.dev.Stop()
	p.dev.Uninit()

	return err
}
