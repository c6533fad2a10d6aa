package player

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func tempPCM(t *testing.T, payload []byte) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "payload.pcm")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestPCMReaderPassThrough16Bit(t *testing.T) {
	payload := []byte{0x00, 0x40, 0x00, 0xc0}
	r := &pcmReader{
		file:        tempPCM(t, payload),
		dataLen:     int64(len(payload)),
		bytesPerSec: 4,
	}

	got := make([]byte, 8)
	n, err := r.Read(got)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("n = %d, want 4", n)
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Errorf("byte %d = %#x, want %#x", i, got[i], payload[i])
		}
	}

	if _, err := r.Read(got); err != io.EOF {
		t.Errorf("expected io.EOF at end of payload, got %v", err)
	}
}

func TestPCMReaderWidens8Bit(t *testing.T) {
	// 128 is silence, 255 near full positive, 0 full negative.
	r := &pcmReader{
		file:        tempPCM(t, []byte{128, 255, 0}),
		dataLen:     3,
		widen:       true,
		bytesPerSec: 8000,
	}

	got := make([]byte, 6)
	n, err := r.Read(got)
	if err != nil {
		t.Fatal(err)
	}
	if n != 6 {
		t.Fatalf("n = %d, want 6 widened bytes", n)
	}

	want := []int16{0, 127 * 256, -128 * 256}
	for i, w := range want {
		v := int16(got[2*i]) | int16(got[2*i+1])<<8
		if v != w {
			t.Errorf("sample %d = %d, want %d", i, v, w)
		}
	}
}

func TestPCMReaderLoops(t *testing.T) {
	r := &pcmReader{
		file:        tempPCM(t, []byte{1, 2, 3, 4}),
		dataLen:     4,
		loop:        true,
		bytesPerSec: 4,
	}

	got := make([]byte, 4)
	for round := 0; round < 5; round++ {
		n, err := r.Read(got)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if n != 4 {
			t.Fatalf("round %d: n = %d, want 4", round, n)
		}
		for i, b := range got {
			if b != byte(i+1) {
				t.Fatalf("round %d byte %d = %d, want %d", round, i, b, i+1)
			}
		}
	}
	if pos := r.Position(); pos <= 0 {
		t.Errorf("Position() = %v after five loops, want positive", pos)
	}
}
