// Package player mirrors the analyzed file to the speakers. Playback is
// best effort: visualization works the same with or without an audio
// device, so callers treat a failed New as a note, not a fatal error.
package player

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/wav"
)

// Player streams the PCM payload of a WAV file through the system audio
// device. 8-bit files are widened to 16-bit on the fly; the channel layout
// is played as stored.
type Player struct {
	file      *os.File
	reader    *pcmReader
	otoCtx    *oto.Context
	otoPlayer *oto.Player
	volume    float64
	paused    bool
	mu        sync.Mutex
	closed    bool
}

// New opens path, validates it is playable PCM and starts playback. The
// caller keeps its own decoder for analysis; this one is independent so
// visual frames and audio buffering never contend on a file cursor.
func New(path string, loop bool) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, fmt.Errorf("player: %s is not a playable wav file", path)
	}
	dec.FwdToPCM()

	rate := int(dec.SampleRate)
	channels := int(dec.NumChans)
	bits := int(dec.BitDepth)
	if bits != 8 && bits != 16 {
		f.Close()
		return nil, fmt.Errorf("player: unsupported bit depth %d", bits)
	}

	dataStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		f.Close()
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		f.Close()
		return nil, err
	}
	<-ready

	r := &pcmReader{
		file:        f,
		dataStart:   dataStart,
		dataLen:     int64(dec.PCMLen()),
		widen:       bits == 8,
		loop:        loop,
		bytesPerSec: rate * channels * bits / 8,
	}

	p := &Player{
		file:   f,
		reader: r,
		otoCtx: ctx,
		volume: 0.8,
	}
	p.otoPlayer = ctx.NewPlayer(r)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()
	return p, nil
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// SetVolume sets volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	v = min(max(v, 0), 1)
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// Position returns how far into the PCM payload playback has read.
func (p *Player) Position() time.Duration {
	return p.reader.Position()
}

// Close stops playback and releases the file.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	p.otoPlayer.Pause()
	p.file.Close()
}

// pcmReader serves the raw PCM payload to the audio device, looping back
// to the start of the data chunk when configured. 8-bit unsigned samples
// are widened to signed 16-bit little endian, since that is the only
// format the output context is opened with.
type pcmReader struct {
	file        *os.File
	dataStart   int64
	dataLen     int64
	offset      int64 // bytes of payload consumed
	widen       bool
	loop        bool
	bytesPerSec int

	scratch []byte
	mu      sync.Mutex
}

func (r *pcmReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.offset >= r.dataLen {
		if !r.loop {
			return 0, io.EOF
		}
		if _, err := r.file.Seek(r.dataStart, io.SeekStart); err != nil {
			return 0, err
		}
		r.offset = 0
	}

	want := int64(len(p))
	if r.widen {
		want /= 2
	}
	if want == 0 {
		return 0, nil
	}
	if remain := r.dataLen - r.offset; want > remain {
		want = remain
	}

	if !r.widen {
		n, err := r.file.Read(p[:want])
		r.offset += int64(n)
		if err == io.EOF && r.loop {
			err = nil
		}
		return n, err
	}

	if int64(len(r.scratch)) < want {
		r.scratch = make([]byte, want)
	}
	n, err := r.file.Read(r.scratch[:want])
	r.offset += int64(n)
	for i := 0; i < n; i++ {
		v := int16(r.scratch[i]) - 128
		s := v * 256
		p[2*i] = byte(s)
		p[2*i+1] = byte(s >> 8)
	}
	if err == io.EOF && r.loop {
		err = nil
	}
	return 2 * n, err
}

// Position reports the consumed payload as wall time at the stream rate.
func (r *pcmReader) Position() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bytesPerSec == 0 {
		return 0
	}
	return time.Duration(float64(r.offset) / float64(r.bytesPerSec) * float64(time.Second))
}
