package localserver

import (
	"github.com/yndnr/confstore-go/internal/core/domain"
)

// Handler answers decoded requests against a Store.
type Handler struct {
	store    *Store
	nodeName string
	readOnly bool
}

// NewHandler creates a handler over store.
func NewHandler(store *Store, nodeName string, readOnly bool) *Handler {
	return &Handler{store: store, nodeName: nodeName, readOnly: readOnly}
}

// Handle returns the response to req. It never returns nil.
func (h *Handler) Handle(req domain.ConfigRequest) *domain.ConfigResponse {
	kind := req.Kind()

	switch r := req.(type) {
	case domain.DumpPrefixAllocator, domain.DumpLinkMonitor, domain.DumpPrefixManager:
		key, schema, _ := domain.DumpKey(kind)
		blob, ok := h.store.Get(key)
		if !ok {
			return &domain.ConfigResponse{Kind: kind, Status: domain.StatusNotFound, Key: key}
		}
		return &domain.ConfigResponse{Kind: kind, Status: domain.StatusOK, Key: key, Schema: schema, Blob: blob}

	case domain.Erase:
		if h.readOnly {
			return failed(kind, r.Key, "store is read-only")
		}
		if !h.store.Delete(r.Key) {
			return &domain.ConfigResponse{Kind: kind, Status: domain.StatusNotFound, Key: r.Key}
		}
		return &domain.ConfigResponse{Kind: kind, Status: domain.StatusOK, Key: r.Key}

	case domain.Store:
		if h.readOnly {
			return failed(kind, r.Key, "store is read-only")
		}
		h.store.Put(r.Key, r.Value)
		return &domain.ConfigResponse{Kind: kind, Status: domain.StatusOK, Key: r.Key}

	case domain.Identity:
		if h.nodeName == "" {
			return failed(kind, "", "node name unknown")
		}
		return &domain.ConfigResponse{Kind: kind, Status: domain.StatusOK, NodeName: h.nodeName}
	}

	return failed(kind, "", "unsupported request")
}

func failed(kind domain.Kind, key, msg string) *domain.ConfigResponse {
	return &domain.ConfigResponse{Kind: kind, Status: domain.StatusFailed, Key: key, Message: msg}
}
