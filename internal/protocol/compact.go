package protocol

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// Field numbers of the compact encoding. They are part of the wire contract
// and must never be renumbered.
const (
	reqFieldKind     protowire.Number = 1
	reqFieldKey      protowire.Number = 2
	reqFieldValue    protowire.Number = 3
	reqFieldChecksum protowire.Number = 4

	respFieldKind     protowire.Number = 1
	respFieldStatus   protowire.Number = 2
	respFieldMessage  protowire.Number = 3
	respFieldKey      protowire.Number = 4
	respFieldSchema   protowire.Number = 5
	respFieldBlob     protowire.Number = 6
	respFieldNodeName protowire.Number = 7
)

// compactMarshaler encodes messages in protobuf wire format. Empty fields are
// omitted and unknown fields are skipped on decode.
type compactMarshaler struct{}

func (compactMarshaler) marshalRequest(w *wireRequest) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, reqFieldKind, uint64(w.Kind))
	b = appendStringField(b, reqFieldKey, w.Key)
	b = appendBytesField(b, reqFieldValue, w.Value)
	b = appendBytesField(b, reqFieldChecksum, w.Checksum)
	return b, nil
}

func (compactMarshaler) unmarshalRequest(data []byte) (*wireRequest, error) {
	w := &wireRequest{}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == reqFieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			k, err := kindFromVarint(v)
			w.Kind = k
			return n, err
		case num == reqFieldKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			w.Key = v
			return n, nil
		case num == reqFieldValue && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			w.Value = cloneBytes(v)
			return n, nil
		case num == reqFieldChecksum && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			w.Checksum = cloneBytes(v)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (compactMarshaler) marshalResponse(w *wireResponse) ([]byte, error) {
	var b []byte
	b = appendVarintField(b, respFieldKind, uint64(w.Kind))
	b = appendVarintField(b, respFieldStatus, uint64(w.Status))
	b = appendStringField(b, respFieldMessage, w.Message)
	b = appendStringField(b, respFieldKey, w.Key)
	b = appendStringField(b, respFieldSchema, w.Schema)
	b = appendBytesField(b, respFieldBlob, w.Blob)
	b = appendStringField(b, respFieldNodeName, w.NodeName)
	return b, nil
}

func (compactMarshaler) unmarshalResponse(data []byte) (*wireResponse, error) {
	w := &wireResponse{}
	err := consumeFields(data, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ == protowire.VarintType && (num == respFieldKind || num == respFieldStatus) {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return n, nil
			}
			if num == respFieldKind {
				k, err := kindFromVarint(v)
				w.Kind = k
				return n, err
			}
			if v > math.MaxUint8 {
				return n, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("status %d out of range", v))
			}
			w.Status = domain.Status(v)
			return n, nil
		}
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}

		v, n := protowire.ConsumeBytes(b)
		switch num {
		case respFieldMessage:
			w.Message = string(v)
		case respFieldKey:
			w.Key = string(v)
		case respFieldSchema:
			w.Schema = string(v)
		case respFieldBlob:
			w.Blob = cloneBytes(v)
		case respFieldNodeName:
			w.NodeName = string(v)
		}
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// consumeFields walks every field of a message. fn returns the number of
// bytes consumed for the field value (negative on a protowire error).
func consumeFields(data []byte, fn func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.ErrSchemaMismatch.WithCause(protowire.ParseError(n)).WithDetails("compact: bad tag")
		}
		data = data[n:]

		m, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if m < 0 {
			return domain.ErrSchemaMismatch.WithCause(protowire.ParseError(m)).WithDetails(fmt.Sprintf("compact: bad field %d", num))
		}
		data = data[m:]
	}
	return nil
}

func kindFromVarint(v uint64) (domain.Kind, error) {
	if v > math.MaxUint8 {
		return domain.KindUnspecified, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("kind %d out of range", v))
	}
	return domain.Kind(v), nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
