// Package audio plays short generated cues for sync events. It is a
// presentation collaborator: it consumes simulation events and never
// touches ECS or sync contracts.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(48000)

// CueType selects a generated sound
type CueType int

const (
	CueSpawn CueType = iota
	CueRemove
	CueHardSnap
)

// CueEngine mixes generated tones through the speaker
type CueEngine struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       bool
}

// NewCueEngine creates an engine; call Initialize before Play
func NewCueEngine() *CueEngine {
	return &CueEngine{mixer: &beep.Mixer{}}
}

// Initialize sets up the speaker. Failure leaves the engine silent but
// usable: Play becomes a no-op.
func (ce *CueEngine) Initialize() error {
	ce.mu.Lock()
	defer ce.mu.Unlock()

	if ce.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}
	speaker.Play(ce.mixer)
	ce.initialized = true
	return nil
}

// Cleanup silences and closes the speaker
func (ce *CueEngine) Cleanup() {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if ce.initialized {
		speaker.Close()
		ce.initialized = false
	}
}

// SetMuted toggles cue playback
func (ce *CueEngine) SetMuted(m bool) {
	ce.mu.Lock()
	ce.muted = m
	ce.mu.Unlock()
}

// Play queues a cue on the mixer. Safe to call from the tick loop.
func (ce *CueEngine) Play(cue CueType) {
	ce.mu.Lock()
	defer ce.mu.Unlock()
	if !ce.initialized || ce.muted {
		return
	}

	var s beep.Streamer
	switch cue {
	case CueSpawn:
		s = tone(660, 70*time.Millisecond)
	case CueRemove:
		s = tone(330, 90*time.Millisecond)
	case CueHardSnap:
		s = tone(180, 120*time.Millisecond)
	default:
		return
	}

	speaker.Lock()
	ce.mixer.Add(s)
	speaker.Unlock()
}

// tone returns a sine burst with a linear attack/release envelope
func tone(freq float64, duration time.Duration) beep.Streamer {
	total := sampleRate.N(duration)
	edge := total / 8
	pos := 0
	phase := 0.0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		for i := range samples {
			if pos >= total {
				return i, false
			}

			val := math.Sin(2 * math.Pi * phase)

			// Envelope avoids clicks at the burst edges
			switch {
			case pos < edge:
				val *= float64(pos) / float64(edge)
			case pos > total-edge:
				val *= float64(total-pos) / float64(edge)
			}

			samples[i][0] = val
			samples[i][1] = val

			phase += freq / float64(sampleRate)
			phase -= math.Floor(phase)
			pos++
		}
		return len(samples), true
	})
}
