package audio

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	SOF0 = 0xAA
	SOF1 = 0x55

	// MaxFrameSamples bounds a single frame so a corrupt count cannot make
	// the decoder allocate or wait for a huge payload.
	MaxFrameSamples = 4096

	// adcShift scales 12-bit ADC readings to the int16 range.
	adcShift = 4
)

var (
	ErrChecksum    = errors.New("frame checksum mismatch")
	ErrFrameLength = errors.New("frame sample count out of range")
)

// Frame is one burst of raw ADC readings sent by the microcontroller.
type Frame struct {
	SampleRate uint32
	Raw        []uint16
}

// Encode builds the on-wire representation:
//
//	[SOF0][SOF1][count u16][rate u32][count × sample u16][CKS]
//
// Multi-byte fields are little endian and CKS is the XOR of every byte
// after the start marker.
func (f Frame) Encode() []byte {
	out := make([]byte, 0, 2+6+2*len(f.Raw)+1)
	out = append(out, SOF0, SOF1)
	out = binary.LittleEndian.AppendUint16(out, uint16(len(f.Raw)))
	out = binary.LittleEndian.AppendUint32(out, f.SampleRate)
	for _, v := range f.Raw {
		out = binary.LittleEndian.AppendUint16(out, v)
	}
	return append(out, checksum(out[2:]))
}

// Samples centres the raw readings on their mean and scales them to int16.
func (f Frame) Samples() []int16 {
	if len(f.Raw) == 0 {
		return nil
	}

	sum := 0.0
	for _, v := range f.Raw {
		sum += float64(v)
	}
	mean := sum / float64(len(f.Raw))

	out := make([]int16, len(f.Raw))
	for i, v := range f.Raw {
		out[i] = clampInt16((float64(v) - mean) * (1 << adcShift))
	}
	return out
}

func checksum(b []byte) byte {
	var cks byte
	for _, v := range b {
		cks ^= v
	}
	return cks
}

// FrameDecoder reads frames from a byte stream, skipping garbage between
// frames.
type FrameDecoder struct {
	r *bufio.Reader
}

func NewFrameDecoder(r io.Reader) *FrameDecoder {
	return &FrameDecoder{r: bufio.NewReader(r)}
}

// Next returns the next frame. Corrupt frames return ErrChecksum or
// ErrFrameLength; the caller may keep calling Next to resynchronise.
func (d *FrameDecoder) Next() (Frame, error) {
	if err := d.sync(); err != nil {
		return Frame{}, err
	}

	var header [6]byte
	if _, err := io.ReadFull(d.r, header[:]); err != nil {
		return Frame{}, err
	}
	count := int(binary.LittleEndian.Uint16(header[0:2]))
	rate := binary.LittleEndian.Uint32(header[2:6])
	if count == 0 || count > MaxFrameSamples {
		return Frame{}, fmt.Errorf("%w: %d", ErrFrameLength, count)
	}

	payload := make([]byte, 2*count+1)
	if _, err := io.ReadFull(d.r, payload); err != nil {
		return Frame{}, err
	}

	want := checksum(header[:]) ^ checksum(payload[:2*count])
	if got := payload[2*count]; got != want {
		return Frame{}, fmt.Errorf("%w: got %#02x, want %#02x", ErrChecksum, got, want)
	}

	raw := make([]uint16, count)
	for i := range raw {
		raw[i] = binary.LittleEndian.Uint16(payload[2*i:])
	}
	return Frame{SampleRate: rate, Raw: raw}, nil
}

// sync consumes bytes up to and including the start-of-frame marker.
func (d *FrameDecoder) sync() error {
	prev := byte(0)
	for {
		b, err := d.r.ReadByte()
		if err != nil {
			return err
		}
		if prev == SOF0 && b == SOF1 {
			return nil
		}
		prev = b
	}
}
