package piano

import (
	"sync"
	"time"

	"github.com/pedromxavier/EEL816/music"
	"github.com/pkg/errors"
	"github.com/rakyll/portmidi"
	log "github.com/sirupsen/logrus"
)

const (
	noteOn  = 0x90
	noteOff = 0x80
)

// Piano plays composed music on a MIDI output device.
type Piano struct {
	OutputDevice portmidi.DeviceID
	// Velocity of every note
	Velocity int
	// Channel in [0, 16)
	Channel int

	outputStream *portmidi.Stream
	sync.Mutex
}

// New initializes portmidi and opens an output stream. A negative device
// picks the system default output.
func New(device int) (p *Piano, err error) {
	logger := log.WithFields(log.Fields{
		"function": "Piano.Init",
	})
	logger.Debug("Initializing portmidi...")
	if err = portmidi.Initialize(); err != nil {
		logger.WithFields(log.Fields{
			"msg": "initialization failed",
		}).Error(err.Error())
		return
	}
	numDevices := portmidi.CountDevices()
	logger.Debugf("Found %d devices", numDevices)
	for i := 0; i < numDevices; i++ {
		info := portmidi.Info(portmidi.DeviceID(i))
		if info == nil || !info.IsOutputAvailable {
			continue
		}
		logger.Debugf("%d) %s %s output", i, info.Interface, info.Name)
	}

	p = &Piano{
		OutputDevice: portmidi.DeviceID(device),
		Velocity:     100,
	}
	if device < 0 {
		p.OutputDevice = portmidi.DefaultOutputDeviceID()
	}
	info := portmidi.Info(p.OutputDevice)
	if info == nil || !info.IsOutputAvailable {
		portmidi.Terminate()
		return nil, errors.Errorf("piano: device %d is not a MIDI output", p.OutputDevice)
	}
	logger.Infof("Using output device %d (%s)", p.OutputDevice, info.Name)

	if p.outputStream, err = portmidi.NewOutputStream(p.OutputDevice, 1024, 0); err != nil {
		logger.WithFields(log.Fields{
			"device": p.OutputDevice,
			"msg":    "problem getting output stream",
		}).Error(err.Error())
		portmidi.Terminate()
		return nil, err
	}
	return
}

// Close shuts the stream and terminates portmidi.
func (p *Piano) Close() (err error) {
	logger := log.WithFields(log.Fields{
		"function": "Piano.Close",
	})
	logger.Debug("Closing output stream")
	if err = p.outputStream.Close(); err != nil {
		logger.Warn(err.Error())
	}
	logger.Debug("Terminating portmidi")
	return portmidi.Terminate()
}

// Play performs the notes in time and returns when the last one is
// released. Every key still down is released if a write fails.
func (p *Piano) Play(notes music.Notes) (err error) {
	p.Lock()
	defer p.Unlock()
	logger := log.WithFields(log.Fields{
		"function": "Piano.Play",
	})

	down := map[int]bool{}
	defer func() {
		for key := range down {
			p.outputStream.WriteShort(int64(noteOff|p.Channel), int64(key), 0)
		}
	}()

	start := time.Now()
	for _, e := range notes.Events() {
		if wait := e.At - time.Since(start); wait > 0 {
			time.Sleep(wait)
		}
		key := min(max(e.Key, 0), 127)
		status, velocity := noteOff, 0
		if e.On {
			status, velocity = noteOn, p.Velocity
		}
		logger.WithFields(log.Fields{
			"p":  key,
			"on": e.On,
		}).Debugf("at %s", e.At)
		if err = p.outputStream.WriteShort(int64(status|p.Channel), int64(key), int64(velocity)); err != nil {
			logger.WithFields(log.Fields{
				"p":   key,
				"msg": "problem writing note",
			}).Error(err.Error())
			return
		}
		if e.On {
			down[key] = true
		} else {
			delete(down, key)
		}
	}
	return
}
