package protocol

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/yndnr/confstore-go/internal/core/domain"
)

type jsonRequest struct {
	Kind     string `json:"kind"`
	Key      string `json:"key,omitempty"`
	Value    []byte `json:"value,omitempty"`
	Checksum string `json:"checksum,omitempty"`
}

type jsonResponse struct {
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Key      string `json:"key,omitempty"`
	Schema   string `json:"schema,omitempty"`
	Blob     []byte `json:"blob,omitempty"`
	NodeName string `json:"node_name,omitempty"`
}

// jsonMarshaler encodes messages as JSON objects. Kinds and statuses travel
// by name; byte fields are base64 and the checksum is hex.
type jsonMarshaler struct{}

func (jsonMarshaler) marshalRequest(w *wireRequest) ([]byte, error) {
	return json.Marshal(jsonRequest{
		Kind:     w.Kind.String(),
		Key:      w.Key,
		Value:    w.Value,
		Checksum: hex.EncodeToString(w.Checksum),
	})
}

func (jsonMarshaler) unmarshalRequest(data []byte) (*wireRequest, error) {
	var j jsonRequest
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, domain.ErrSchemaMismatch.WithCause(err).WithDetails("json: malformed request")
	}
	kind, err := domain.ParseKind(j.Kind)
	if err != nil {
		return nil, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("json: unknown kind %q", j.Kind))
	}
	checksum, err := hex.DecodeString(j.Checksum)
	if err != nil {
		return nil, domain.ErrSchemaMismatch.WithCause(err).WithDetails("json: bad checksum")
	}
	return &wireRequest{
		Kind:     kind,
		Key:      j.Key,
		Value:    cloneBytes(j.Value),
		Checksum: cloneBytes(checksum),
	}, nil
}

func (jsonMarshaler) marshalResponse(w *wireResponse) ([]byte, error) {
	return json.Marshal(jsonResponse{
		Kind:     w.Kind.String(),
		Status:   w.Status.String(),
		Message:  w.Message,
		Key:      w.Key,
		Schema:   w.Schema,
		Blob:     w.Blob,
		NodeName: w.NodeName,
	})
}

func (jsonMarshaler) unmarshalResponse(data []byte) (*wireResponse, error) {
	var j jsonResponse
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, domain.ErrSchemaMismatch.WithCause(err).WithDetails("json: malformed response")
	}
	kind, err := domain.ParseKind(j.Kind)
	if err != nil {
		return nil, domain.ErrSchemaMismatch.WithDetails(fmt.Sprintf("json: unknown kind %q", j.Kind))
	}
	status, err := domain.ParseStatus(j.Status)
	if err != nil {
		return nil, domain.ErrSchemaMismatch.WithCause(err).WithDetails("json: bad status")
	}
	return &wireResponse{
		Kind:     kind,
		Status:   status,
		Message:  j.Message,
		Key:      j.Key,
		Schema:   j.Schema,
		Blob:     cloneBytes(j.Blob),
		NodeName: j.NodeName,
	}, nil
}
