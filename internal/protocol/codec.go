package protocol

import (
	"fmt"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// Codec encodes requests and decodes responses in one wire format.
// Codecs are pure and safe for concurrent use.
type Codec interface {
	// Format reports the wire format of the codec.
	Format() domain.Format

	EncodeRequest(r domain.ConfigRequest) ([]byte, error)

	// DecodeRequest decodes a request. expected may be KindUnspecified to
	// accept any kind (used by responders that do not know what comes next).
	DecodeRequest(data []byte, expected domain.Kind) (domain.ConfigRequest, error)

	EncodeResponse(r *domain.ConfigResponse) ([]byte, error)

	// DecodeResponse decodes a response and fails with ErrSchemaMismatch when
	// its kind differs from expected.
	DecodeResponse(data []byte, expected domain.Kind) (*domain.ConfigResponse, error)
}

// marshaler is the format-specific half of a codec.
type marshaler interface {
	marshalRequest(*wireRequest) ([]byte, error)
	unmarshalRequest([]byte) (*wireRequest, error)
	marshalResponse(*wireResponse) ([]byte, error)
	unmarshalResponse([]byte) (*wireResponse, error)
}

type codec struct {
	format domain.Format
	m      marshaler
}

// New returns the codec for the given format.
func New(format domain.Format) (Codec, error) {
	switch format {
	case domain.FormatCompact:
		return &codec{format: format, m: compactMarshaler{}}, nil
	case domain.FormatJSON:
		return &codec{format: format, m: jsonMarshaler{}}, nil
	}
	return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown wire format %d", uint8(format)))
}

// MustNew is like New but panics on an unknown format.
func MustNew(format domain.Format) Codec {
	c, err := New(format)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *codec) Format() domain.Format {
	return c.format
}

func (c *codec) EncodeRequest(r domain.ConfigRequest) ([]byte, error) {
	w, err := requestToWire(r)
	if err != nil {
		return nil, err
	}
	data, err := c.m.marshalRequest(w)
	if err != nil {
		return nil, fmt.Errorf("%s: encode request: %w", c.format, err)
	}
	if len(data) > MaxFrameSize {
		return nil, ErrPayloadTooLarge
	}
	return data, nil
}

func (c *codec) DecodeRequest(data []byte, expected domain.Kind) (domain.ConfigRequest, error) {
	w, err := c.m.unmarshalRequest(data)
	if err != nil {
		return nil, err
	}
	return requestFromWire(w, expected)
}

func (c *codec) EncodeResponse(r *domain.ConfigResponse) ([]byte, error) {
	w, err := responseToWire(r)
	if err != nil {
		return nil, err
	}
	data, err := c.m.marshalResponse(w)
	if err != nil {
		return nil, fmt.Errorf("%s: encode response: %w", c.format, err)
	}
	return data, nil
}

func (c *codec) DecodeResponse(data []byte, expected domain.Kind) (*domain.ConfigResponse, error) {
	w, err := c.m.unmarshalResponse(data)
	if err != nil {
		return nil, err
	}
	return responseFromWire(w, expected)
}
