package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

// wireRequest is the logical request schema shared by both codecs.
type wireRequest struct {
	Kind     domain.Kind
	Key      string
	Value    []byte
	Checksum []byte // murmur3 128-bit of Value, store only
}

// wireResponse is the logical response schema shared by both codecs.
type wireResponse struct {
	Kind     domain.Kind
	Status   domain.Status
	Message  string
	Key      string
	Schema   string
	Blob     []byte
	NodeName string
}

// Checksum returns the 16-byte murmur3 checksum carried with stored values.
func Checksum(value []byte) []byte {
	h1, h2 := murmur3.Sum128(value)
	out := make([]byte, 16)
	binary.BigEndian.PutUint64(out[:8], h1)
	binary.BigEndian.PutUint64(out[8:], h2)
	return out
}

func requestToWire(r domain.ConfigRequest) (*wireRequest, error) {
	if err := domain.ValidateRequest(r); err != nil {
		return nil, err
	}

	w := &wireRequest{Kind: r.Kind()}
	switch req := r.(type) {
	case domain.DumpPrefixAllocator, domain.DumpLinkMonitor, domain.DumpPrefixManager, domain.Identity:
	case domain.Erase:
		w.Key = req.Key
	case domain.Store:
		w.Key = req.Key
		w.Value = req.Value
		w.Checksum = Checksum(req.Value)
	default:
		return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unsupported request type %T", r))
	}
	return w, nil
}

func requestFromWire(w *wireRequest, expected domain.Kind) (domain.ConfigRequest, error) {
	if err := checkKind(w.Kind, expected); err != nil {
		return nil, err
	}

	switch w.Kind {
	case domain.KindDumpPrefixAllocator:
		return domain.DumpPrefixAllocator{}, nil
	case domain.KindDumpLinkMonitor:
		return domain.DumpLinkMonitor{}, nil
	case domain.KindDumpPrefixManager:
		return domain.DumpPrefixManager{}, nil
	case domain.KindIdentity:
		return domain.Identity{}, nil
	case domain.KindErase:
		if err := checkRequestKey(w); err != nil {
			return nil, err
		}
		return domain.Erase{Key: w.Key}, nil
	case domain.KindStore:
		if err := checkRequestKey(w); err != nil {
			return nil, err
		}
		if !bytes.Equal(w.Checksum, Checksum(w.Value)) {
			return nil, domain.ErrSchemaMismatch.WithDetails("store value checksum mismatch")
		}
		return domain.Store{Key: w.Key, Value: w.Value}, nil
	}
	return nil, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("unknown request kind %d", uint8(w.Kind)))
}

func checkRequestKey(w *wireRequest) error {
	if w.Key == "" {
		return domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("%s request without key", w.Kind))
	}
	if !utf8.ValidString(w.Key) {
		return domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("%s request key is not valid UTF-8", w.Kind))
	}
	return nil
}

func responseToWire(r *domain.ConfigResponse) (*wireResponse, error) {
	if r == nil {
		return nil, domain.ErrInvalidArgument.WithDetails("response is nil")
	}
	if !r.Kind.Valid() {
		return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("response kind %d", uint8(r.Kind)))
	}
	if r.Status == domain.StatusUnspecified {
		return nil, domain.ErrInvalidArgument.WithDetails("response status is unspecified")
	}
	return &wireResponse{
		Kind:     r.Kind,
		Status:   r.Status,
		Message:  r.Message,
		Key:      r.Key,
		Schema:   r.Schema,
		Blob:     r.Blob,
		NodeName: r.NodeName,
	}, nil
}

func responseFromWire(w *wireResponse, expected domain.Kind) (*domain.ConfigResponse, error) {
	if err := checkKind(w.Kind, expected); err != nil {
		return nil, err
	}
	switch w.Status {
	case domain.StatusOK, domain.StatusNotFound, domain.StatusFailed:
	default:
		return nil, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("unknown response status %d", uint8(w.Status)))
	}
	if w.Status == domain.StatusOK && w.Kind.IsDump() && w.Schema == "" {
		return nil, domain.ErrSchemaMismatch.WithDetails("dump response without schema")
	}
	return &domain.ConfigResponse{
		Kind:     w.Kind,
		Status:   w.Status,
		Message:  w.Message,
		Key:      w.Key,
		Schema:   w.Schema,
		Blob:     w.Blob,
		NodeName: w.NodeName,
	}, nil
}

// checkKind rejects unknown kinds and, unless expected is unspecified,
// any kind other than expected.
func checkKind(got, expected domain.Kind) error {
	if !got.Valid() {
		return domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("unknown kind %d", uint8(got)))
	}
	if expected != domain.KindUnspecified && got != expected {
		return domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("got %s, expected %s", got, expected))
	}
	return nil
}
