package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func feed(t *testing.T, a *Assembler, data []byte) []Frame {
	t.Helper()
	var frames []Frame
	for _, b := range data {
		frame, err := a.Accept(b)
		if err != nil {
			t.Fatalf("Accept(0x%02x) error = %v", b, err)
		}
		if frame != nil {
			frames = append(frames, frame)
		}
	}
	return frames
}

func TestAssemblerEmitsCompleteFrame(t *testing.T) {
	// For any L >= 2, exactly L bytes with byte 0 = L yield one frame and
	// leave the buffer empty.
	for _, l := range []int{2, 3, 6, 17, DefaultMaxFrameSize} {
		a := NewAssembler(0)
		data := make([]byte, l)
		data[0] = byte(l)
		for i := 1; i < l; i++ {
			data[i] = byte(i)
		}

		frames := feed(t, a, data)
		if len(frames) != 1 {
			t.Fatalf("L=%d: got %d frames, want 1", l, len(frames))
		}
		if !bytes.Equal(frames[0], data) {
			t.Errorf("L=%d: frame = %v, want %v", l, frames[0], data)
		}
		if a.Pending() != 0 {
			t.Errorf("L=%d: %d bytes pending after completion, want 0", l, a.Pending())
		}
	}
}

func TestAssemblerBackToBackFrames(t *testing.T) {
	a := NewAssembler(0)
	stream := []byte{
		0x03, 0xAA, 0x55,
		0x02, 0x99,
		0x04, 0x01, 0x02, 0x03,
	}
	frames := feed(t, a, stream)
	if len(frames) != 3 {
		t.Fatalf("got %d frames, want 3", len(frames))
	}
	if !bytes.Equal(frames[1], []byte{0x02, 0x99}) {
		t.Errorf("frame 2 = %v, want [2 153]", frames[1])
	}
}

func TestAssemblerRejectsBadHeaders(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		header  byte
		wantErr error
	}{
		{name: "zero length", max: 0, header: 0x00, wantErr: ErrZeroLengthHeader},
		{name: "length one", max: 0, header: 0x01, wantErr: ErrHeaderTooShort},
		{name: "over maximum", max: 16, header: 0x20, wantErr: ErrFrameTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(tt.max)
			_, err := a.Accept(tt.header)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Accept(0x%02x) error = %v, want %v", tt.header, err, tt.wantErr)
			}
			if a.Pending() != 0 {
				t.Errorf("buffer not empty after header error")
			}

			// The assembler must still accept a valid frame afterwards.
			if frames := feed(t, a, []byte{0x02, 0x42}); len(frames) != 1 {
				t.Errorf("no frame after recovery, got %d", len(frames))
			}
		})
	}
}

func TestAssemblerReset(t *testing.T) {
	a := NewAssembler(0)
	feed(t, a, []byte{0x05, 0x01, 0x02})
	if a.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", a.Pending())
	}
	a.Reset()
	if a.Pending() != 0 {
		t.Fatalf("Pending() = %d after Reset, want 0", a.Pending())
	}
	if frames := feed(t, a, []byte{0x02, 0x42}); len(frames) != 1 {
		t.Errorf("no frame after reset, got %d", len(frames))
	}
}
