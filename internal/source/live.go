package source

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Initialize sets up the capture backend. Call once before OpenLive and
// pair with Terminate.
func Initialize() error { return portaudio.Initialize() }

// Terminate tears down the capture backend.
func Terminate() error { return portaudio.Terminate() }

// LiveSource captures mono samples from the default input device. A capture
// goroutine reads device blocks and hands them to the pipeline through a
// single-slot channel, which is the only synchronization point; a buffer is
// recycled to the capture side only after the pipeline has copied it out,
// so the transform never reads a block that is being overwritten. When the
// pipeline falls behind, the oldest queued block is dropped rather than
// stalling the device.
type LiveSource struct {
	stream *portaudio.Stream
	rate   int

	in     []float32 // device read target
	blocks chan []float64
	free   chan []float64
	stop   chan struct{}
	done   chan struct{}
}

// OpenLive opens the default input device at the given rate and block size.
func OpenLive(sampleRate, blockSize int) (*LiveSource, error) {
	dev, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("source: no input device: %w", err)
	}

	params := portaudio.HighLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = blockSize

	in := make([]float32, blockSize)
	stream, err := portaudio.OpenStream(params, in)
	if err != nil {
		return nil, fmt.Errorf("source: opening capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("source: starting capture stream: %w", err)
	}

	s := &LiveSource{
		stream: stream,
		rate:   sampleRate,
		in:     in,
		blocks: make(chan []float64, 1),
		free:   make(chan []float64, 3),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _i := 0; _i < 3; _i++ {
		s.free <- make([]float64, blockSize)
	}
	go s.capture()
	return s, nil
}

func (s *LiveSource) capture() {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		default:
		}
		if err := s.stream.Read(); err != nil {
			return
		}

		var buf []float64
		select {
		case buf = <-s.free:
		default:
			// Pipeline is behind: reclaim the queued block and overwrite it.
			select {
			case buf = <-s.blocks:
			case buf = <-s.free:
			case <-s.stop:
				return
			}
		}
		for i, v := range s.in {
			buf[i] = float64(v)
		}
		select {
		case s.blocks <- buf:
		default:
			// Slot filled since we reclaimed; drop this block.
			s.free <- buf
		}
	}
}

// ReadBlock blocks until the next captured block arrives. Capture failure
// surfaces as end-of-stream.
func (s *LiveSource) ReadBlock(dst []float64) (int, bool) {
	select {
	case buf := <-s.blocks:
		n := copy(dst, buf)
		s.free <- buf
		for i := n; i < len(dst); i++ {
			dst[i] = 0
		}
		return n, false
	case <-s.done:
		for i := range dst {
			dst[i] = 0
		}
		return 0, true
	}
}

func (s *LiveSource) SampleRate() int { return s.rate }
func (s *LiveSource) Name() string    { return "live input" }

func (s *LiveSource) Close() error {
	close(s.stop)
	err := s.stream.Stop()
	<-s.done
	if cerr := s.stream.Close(); err == nil {
		err = cerr
	}
	return err
}
