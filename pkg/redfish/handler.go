package redfish

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/getmockd/fishem/pkg/fish"
	"github.com/getmockd/fishem/pkg/httputil"
	"github.com/getmockd/fishem/pkg/logging"
	"github.com/getmockd/fishem/pkg/mockup"
)

// MaxBodySize caps request bodies.
const MaxBodySize = 10 << 20

const actionsSegment = "/Actions/"

// acceptableXML lists the Accept values under which $metadata is served.
var acceptableXML = []string{"application/xml", "*/*", "application/*"}

// Handler serves the resource store over HTTP according to a Registry.
type Handler struct {
	store    *fish.Store
	registry *Registry
	log      *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHandler creates a Handler for store using registry.
func NewHandler(store *fish.Store, registry *Registry, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		registry: registry,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("OData-Version", httputil.ODataVersion)

	key := fish.Normalize(r.URL.Path)

	if instKey, action, ok := splitAction(key); ok {
		if t, _, matched := h.registry.Match(instKey); matched && t.Actionable {
			h.handleAction(w, r, t, instKey, action)
			return
		}
	}

	t, vars, ok := h.registry.Match(key)
	if !ok {
		if !h.store.Has(key) {
			httputil.WriteNotFound(w, "Object not found")
			return
		}
		t = h.registry.Fallback()
	}

	h.log.Debug("resource request", "method", r.Method, "key", key, "type", t.Name, "vars", vars)

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.handleGet(w, r, t, key)
	case http.MethodOptions:
		w.Header().Set("Allow", t.Allow())
		w.WriteHeader(http.StatusOK)
	case http.MethodPost:
		if !t.Insertable {
			httputil.WriteMethodNotAllowed(w, t.Allow())
			return
		}
		h.handleInsert(w, r, key)
	case http.MethodPut:
		if !t.Updatable {
			httputil.WriteMethodNotAllowed(w, t.Allow())
			return
		}
		h.handleReplace(w, r, key)
	case http.MethodPatch:
		if !t.Updatable {
			httputil.WriteMethodNotAllowed(w, t.Allow())
			return
		}
		h.handlePatch(w, r, key)
	case http.MethodDelete:
		if !t.Deletable {
			httputil.WriteMethodNotAllowed(w, t.Allow())
			return
		}
		h.handleDelete(w, key)
	default:
		httputil.WriteMethodNotAllowed(w, t.Allow())
	}
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, t *ResourceType, key string) {
	doc, err := h.store.Get(key)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if t.Content != ContentXML {
		httputil.WriteOK(w, doc)
		return
	}

	if !acceptsXML(r.Header.Values("Accept")) {
		httputil.WriteRedfishError(w, http.StatusNotAcceptable, httputil.MessageNotAcceptable, "XML not allowed by Accept Headers")
		return
	}
	body, err := mockup.EncodeMetadata(doc)
	if err != nil {
		h.log.Error("failed to encode metadata", "key", key, "error", err)
		httputil.WriteInternalError(w, "Stored metadata cannot be rendered as XML")
		return
	}
	httputil.WriteXML(w, http.StatusOK, body)
}

func (h *Handler) handleInsert(w http.ResponseWriter, r *http.Request, key string) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	doc, err := h.store.Insert(key, body)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	location, _ := doc.ODataID()
	h.log.Debug("resource created", "collection", key, "key", location)
	httputil.WriteCreated(w, location, doc)
}

func (h *Handler) handleReplace(w http.ResponseWriter, r *http.Request, key string) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	doc, err := h.store.PutWhole(key, body)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.log.Debug("resource replaced", "key", key)
	httputil.WriteOK(w, doc)
}

func (h *Handler) handlePatch(w http.ResponseWriter, r *http.Request, key string) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	doc, err := h.store.Patch(key, body)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.log.Debug("resource patched", "key", key, "fields", len(body))
	httputil.WriteOK(w, doc)
}

func (h *Handler) handleDelete(w http.ResponseWriter, key string) {
	doc, err := h.store.Delete(key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	h.log.Debug("resource deleted", "key", key)
	httputil.WriteOK(w, doc)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request, t *ResourceType, instKey, action string) {
	if r.Method != http.MethodPost {
		httputil.WriteMethodNotAllowed(w, http.MethodPost)
		return
	}
	if !h.store.Has(instKey) {
		httputil.WriteNotFound(w, "Object not found")
		return
	}
	if !t.HasAction(action) {
		httputil.WriteBadRequest(w, httputil.MessageGeneralError, "Unknown Action for "+instKey)
		return
	}

	result := fmt.Sprintf("%s action for %s", action, instKey)
	h.log.Info("action invoked", "type", t.Name, "action", action, "key", instKey)
	httputil.WriteOK(w, result)
}

// splitAction splits ".../Actions/<Name>" into the instance key and the
// action name. OEM action names keep their "Oem/" prefix.
func splitAction(key string) (string, string, bool) {
	i := strings.Index(key, actionsSegment)
	if i < 0 {
		return "", "", false
	}
	return key[:i], key[i+len(actionsSegment):], true
}

// readBody decodes a JSON object from the request body. On failure it
// writes the error response and returns false.
func readBody(w http.ResponseWriter, r *http.Request) (fish.Document, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteRedfishError(w, http.StatusRequestEntityTooLarge, httputil.MessageGeneralError, "Request body too large")
			return nil, false
		}
		httputil.WriteBadRequest(w, httputil.MessageMalformedJSON, "Bad JSON input")
		return nil, false
	}

	var doc fish.Document
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		httputil.WriteBadRequest(w, httputil.MessageMalformedJSON, "Bad JSON input")
		return nil, false
	}
	return doc, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	status := fish.StatusCode(err)
	switch status {
	case http.StatusNotFound:
		httputil.WriteNotFound(w, fish.Detail(err))
	case http.StatusBadRequest:
		httputil.WriteBadRequest(w, httputil.MessageGeneralError, fish.Detail(err))
	default:
		httputil.WriteInternalError(w, err.Error())
	}
}

// acceptsXML reports whether the Accept header values admit an XML body.
// A request without an Accept header accepts anything.
func acceptsXML(values []string) bool {
	if len(values) == 0 {
		return true
	}
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			for _, ok := range acceptableXML {
				if mediaType == ok {
					return true
				}
			}
		}
	}
	return false
}
