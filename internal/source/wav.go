package source

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"
)

const pcmFormat = 1 // WAVE format code for uncompressed PCM

// FileSource streams mono float64 blocks from an uncompressed PCM WAV file.
// The container header is parsed and validated once at open; reads never
// fail mid-stream on format grounds. Multi-channel files are averaged to
// mono. With looping enabled the read cursor wraps at the end of the data
// chunk inside the same ReadBlock call, so every block is seamless.
type FileSource struct {
	f    *os.File
	path string

	sampleRate int
	channels   int
	bitDepth   int
	frameSize  int // bytes per sample frame across all channels

	dataStart int64 // file offset of the PCM data chunk
	dataLen   int64 // PCM byte count
	pos       int64 // bytes consumed within the data chunk

	loop bool
	raw  []byte  // one block's worth of raw PCM, reused every frame
	last float64 // most recent sample, used to pad the final short block
}

// OpenFile opens and validates a WAV file for block streaming. blockSize is
// the number of samples per ReadBlock. Unsupported encodings are rejected
// here with a FormatError, never during streaming.
func OpenFile(path string, blockSize int, loop bool) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "not a RIFF/WAVE container"}
	}
	if dec.WavAudioFormat != pcmFormat {
		f.Close()
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unsupported encoding %d (only PCM is accepted)", dec.WavAudioFormat)}
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth != 8 && bitDepth != 16 {
		f.Close()
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unsupported bit depth %d (want 8 or 16)", bitDepth)}
	}
	channels := int(dec.NumChans)
	if channels < 1 || channels > 2 {
		f.Close()
		return nil, &FormatError{Path: path, Reason: fmt.Sprintf("unsupported channel count %d", channels)}
	}

	if err := dec.FwdToPCM(); err != nil {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "no PCM data chunk"}
	}
	dataLen := dec.PCMLen()
	if dataLen <= 0 {
		f.Close()
		return nil, &FormatError{Path: path, Reason: "empty data chunk"}
	}
	dataStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("source: locating PCM data: %w", err)
	}

	frameSize := channels * bitDepth / 8
	return &FileSource{
		f:          f,
		path:       path,
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
		frameSize:  frameSize,
		dataStart:  dataStart,
		dataLen:    dataLen - dataLen%int64(frameSize),
		loop:       loop,
		raw:        make([]byte, blockSize*frameSize),
	}, nil
}

// ReadBlock fills dst with normalized mono samples, advancing the cursor.
// When fewer than len(dst) samples remain: looping wraps to the data start
// and keeps filling; otherwise the tail is padded with the last sample
// value and eos is reported.
func (s *FileSource) ReadBlock(dst []float64) (int, bool) {
	filled := 0
	for filled < len(dst) {
		remain := s.dataLen - s.pos
		if remain < int64(s.frameSize) {
			if s.loop {
				if _, err := s.f.Seek(s.dataStart, io.SeekStart); err != nil {
					break
				}
				s.pos = 0
				continue
			}
			break
		}

		want := int64(len(dst)-filled) * int64(s.frameSize)
		if want > remain {
			want = remain
		}
		n, err := io.ReadFull(s.f, s.raw[:want])
		frames := n / s.frameSize
		if frames == 0 {
			break
		}
		s.decodeFrames(s.raw[:frames*s.frameSize], dst[filled:filled+frames])
		s.pos += int64(frames * s.frameSize)
		filled += frames
		if err != nil && frames*s.frameSize < int(want) {
			// Truncated data chunk; treat like end of data.
			s.pos = s.dataLen
		}
	}

	if filled < len(dst) {
		for i := filled; i < len(dst); i++ {
			dst[i] = s.last
		}
		return filled, true
	}
	return filled, false
}

// decodeFrames converts raw little-endian PCM frames to normalized mono
// samples, averaging channels.
func (s *FileSource) decodeFrames(raw []byte, dst []float64) {
	for i := range dst {
		off := i * s.frameSize
		var sum float64
		for ch := 0; ch < s.channels; ch++ {
			if s.bitDepth == 8 {
				sum += (float64(raw[off+ch]) - 128) / 128
			} else {
				v := int16(binary.LittleEndian.Uint16(raw[off+ch*2:]))
				sum += float64(v) / 32768
			}
		}
		dst[i] = sum / float64(s.channels)
	}
	s.last = dst[len(dst)-1]
}

// SampleRate returns the rate declared in the container header.
func (s *FileSource) SampleRate() int { return s.sampleRate }

func (s *FileSource) Name() string { return filepath.Base(s.path) }

// Duration reports the total playing time of the data chunk.
func (s *FileSource) Duration() float64 {
	frames := s.dataLen / int64(s.frameSize)
	return float64(frames) / float64(s.sampleRate)
}

// Rewind moves the cursor back to the start of the data chunk.
func (s *FileSource) Rewind() error {
	if _, err := s.f.Seek(s.dataStart, io.SeekStart); err != nil {
		return err
	}
	s.pos = 0
	s.last = 0
	return nil
}

func (s *FileSource) Close() error { return s.f.Close() }
