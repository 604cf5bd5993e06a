package docwire

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the default limit on one frame's payload.
const MaxFrameSize = 8 << 20 // 8 MiB

var (
	ErrEmptyFrame    = errors.New("docwire: empty frame")
	ErrFrameTooLarge = errors.New("docwire: frame too large")
	// ErrBadPayload means the frame arrived whole but its JSON did not decode.
	// The stream is still aligned and the next frame can be read.
	ErrBadPayload = errors.New("docwire: bad payload")
)

// Framer reads and writes frames on one stream. A frame is a 4-byte big-endian
// payload length followed by that many bytes of JSON.
//
// Recv and Send may run on different goroutines, but not two Recvs or two Sends at once.
type Framer struct {
	r   *bufio.Reader
	w   *bufio.Writer
	max uint32
}

func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{r: bufio.NewReader(rw), w: bufio.NewWriter(rw), max: MaxFrameSize}
}

// SetMaxFrameSize lowers or raises the payload limit for both directions.
func (f *Framer) SetMaxFrameSize(n uint32) {
	if n > 0 {
		f.max = n
	}
}

// Recv reads the next frame into v.
func (f *Framer) Recv(v any) error {
	var hdr [4]byte
	if _, err := io.ReadFull(f.r, hdr[:]); err != nil {
		return err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	switch {
	case n == 0:
		return ErrEmptyFrame
	case n > f.max:
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, f.max)
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(f.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return err
	}
	if err := json.Unmarshal(buf, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// Send writes v as one frame and flushes it.
func (f *Framer) Send(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("docwire: marshal: %w", err)
	}
	if uint64(len(b)) > uint64(f.max) {
		return fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(b), f.max)
	}

	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(b)))
	if _, err := f.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := f.w.Write(b); err != nil {
		return err
	}
	return f.w.Flush()
}
