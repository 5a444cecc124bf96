package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// MaxFrameSize bounds the payload of a single frame.
const MaxFrameSize = 16 << 20

// ErrFrameTooLarge is returned when an incoming frame announces more than
// MaxFrameSize bytes. It matches domain.ErrSchemaMismatch under errors.Is.
var ErrFrameTooLarge = domain.ErrSchemaMismatch.WithDetails("frame too large")

// ErrPayloadTooLarge is returned when an outgoing payload does not fit in one
// frame. It matches domain.ErrInvalidArgument under errors.Is.
var ErrPayloadTooLarge = domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("value too large: a frame holds at most %d bytes", MaxFrameSize))

// AppendFrame appends a framed payload to dst.
func AppendFrame(dst []byte, format domain.Format, payload []byte) ([]byte, error) {
	if !format.Valid() {
		return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("frame format %d", uint8(format)))
	}
	if len(payload) > MaxFrameSize {
		return nil, ErrPayloadTooLarge
	}

	var header [5]byte
	binary.BigEndian.PutUint32(header[:4], uint32(1+len(payload)))
	header[4] = byte(format)

	dst = append(dst, header[:]...)
	return append(dst, payload...), nil
}

// WriteFrame writes one framed payload to w.
func WriteFrame(w io.Writer, format domain.Format, payload []byte) error {
	frame, err := AppendFrame(make([]byte, 0, 5+len(payload)), format, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadFrame reads one frame from r. I/O errors are returned unchanged so the
// caller can classify them; malformed headers fail with ErrSchemaMismatch.
func ReadFrame(r io.Reader) (domain.Format, []byte, error) {
	var header [5]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return 0, nil, err
	}

	length := binary.BigEndian.Uint32(header[:4])
	if length < 1 {
		return 0, nil, domain.ErrSchemaMismatch.WithDetails("empty frame")
	}
	if length-1 > MaxFrameSize {
		return 0, nil, ErrFrameTooLarge
	}

	format := domain.Format(header[4])
	if !format.Valid() {
		return 0, nil, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("unknown frame format %d", header[4]))
	}

	payload := make([]byte, length-1)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return 0, nil, err
	}
	return format, payload, nil
}
