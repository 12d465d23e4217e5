//go:build malgo
// +build malgo

package speaker

import (
	"log"

	"github.com/faiface/pcmstream"
	"github.com/gen2brain/malgo"
	"github.com/pkg/errors"
)

type malgoBackend struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
}

func openBackend(format pcmstream.Format, bufferFrames int, q *queue, logger *log.Logger) (backend, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		if logger != nil {
			logger.Printf("malgo: %v", message)
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "context")
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = uint32(format.NumChannels)
	deviceConfig.SampleRate = uint32(format.SampleRate)
	deviceConfig.PeriodSizeInFrames = uint32(bufferFrames)
	deviceConfig.Alsa.NoMMap = 1

	onSamples := func(pOutputSample, pInputSamples []byte, framecount uint32) {
		q.read(pOutputSample)
	}
	device, err := malgo.InitDevice(ctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		ctx.Uninit()
		ctx.Free()
		return nil, errors.Wrap(err, "device")
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		ctx.Uninit()
		ctx.Free()
		return nil, errors.Wrap(err, "device start")
	}
	return &malgoBackend{ctx: ctx, device: device}, nil
}

// buffered is always zero: the data callback hands samples straight to the device.
func (b *malgoBackend) buffered() int {
	return 0
}

func (b *malgoBackend) close() error {
	err := b.device.Stop()
	b.device.Uninit()
	if uerr := b.ctx.Uninit(); err == nil {
		err = uerr
	}
	b.ctx.Free()
	return err
}
