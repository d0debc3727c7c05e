// Package audio plays short sound cues through a shared beep mixer.
package audio

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Faultbox/icebead/internal/logger"
)

// DefaultSampleRate is the playback sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// Player decodes cues once and plays them fire-and-forget.
type Player struct {
	mu sync.RWMutex

	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	cues        map[string]*beep.Buffer

	volume float64 // 0.0 to 1.0
	muted  bool
}

// New creates a player. Cues can be loaded before Init.
func New(volume float64) *Player {
	return &Player{
		sampleRate: DefaultSampleRate,
		mixer:      &beep.Mixer{},
		cues:       make(map[string]*beep.Buffer),
		volume:     clamp(volume, 0, 1),
	}
}

// Init opens the speaker and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close stops playback.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		speaker.Clear()
	}
	p.initialized = false
}

// LoadCue decodes WAV data and stores it under id, resampled to the
// playback rate.
func (p *Player) LoadCue(id string, data []byte) error {
	streamer, format, err := wav.Decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("decode wav %s: %w", id, err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		src = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}
	p.store(id, src)
	return nil
}

// SynthesizeCrack stores a short procedural ice-crack cue under id: a burst
// of noise with a fast exponential decay.
func (p *Player) SynthesizeCrack(id string, seed int64) {
	p.store(id, crackStreamer(p.sampleRate, seed))
}

func crackStreamer(sr beep.SampleRate, seed int64) beep.Streamer {
	rng := rand.New(rand.NewSource(seed))
	total := sr.N(180 * time.Millisecond)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := 0
		for ; n < len(samples) && pos < total; n++ {
			t := float64(pos) / float64(sr)
			env := math.Exp(-t * 38)
			v := (rng.Float64()*2 - 1) * env * 0.8
			samples[n] = [2]float64{v, v}
			pos++
		}
		return n, true
	})
}

func (p *Player) store(id string, s beep.Streamer) {
	buf := beep.NewBuffer(beep.Format{SampleRate: p.sampleRate, NumChannels: 2, Precision: 2})
	buf.Append(s)

	p.mu.Lock()
	p.cues[id] = buf
	p.mu.Unlock()

	logger.Debug("audio cue loaded", zap.String("cue", id), zap.Int("samples", buf.Len()))
}

// HasCue reports whether id is loaded.
func (p *Player) HasCue(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.cues[id]
	return ok
}

// PlayOnce starts cue id and returns immediately. Unknown cues and an
// uninitialized speaker are logged and ignored.
func (p *Player) PlayOnce(id string) {
	p.mu.RLock()
	buf, ok := p.cues[id]
	initialized := p.initialized
	vol := p.volume
	muted := p.muted
	p.mu.RUnlock()

	switch {
	case !ok:
		logger.Warn("audio cue not loaded", zap.String("cue", id))
		return
	case !initialized || muted:
		return
	}

	s := &effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   volumeToDb(vol),
		Silent:   vol <= 0,
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// SetVolume sets the cue volume (0.0 to 1.0).
func (p *Player) SetVolume(vol float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = clamp(vol, 0, 1)
}

// Volume returns the cue volume.
func (p *Player) Volume() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.volume
}

// SetMuted silences new cues.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

// volumeToDb maps a 0-1 volume to the log2 gain effects.Volume expects with
// Base 2: 1 is unchanged, 0.5 is one halving.
func volumeToDb(vol float64) float64 {
	if vol <= 0 {
		return -100
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
