// Package api serves the run-queue admin surface:
//
//	GET    /v1/queue            list hosted runs
//	POST   /v1/queue            submit a run (multipart: type, file)
//	DELETE /v1/queue/{runName}  begin uninstall
//	GET    /v1/runs/{runName}/state  persisted state of one run
package api

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/harbor/generator"
	"github.com/twitter/harbor/run"
	"github.com/twitter/harbor/state"
)

type Handler struct {
	manager   *run.Manager
	specStore *state.SpecStore
	registry  *generator.Registry
}

func NewHandler(manager *run.Manager, specStore *state.SpecStore, registry *generator.Registry) *Handler {
	return &Handler{manager: manager, specStore: specStore, registry: registry}
}

// Register mounts the handler's routes.
func (h *Handler) Register(mount func(pattern string, handler http.Handler)) {
	mount("/v1/queue", http.HandlerFunc(h.queue))
	mount("/v1/queue/", http.HandlerFunc(h.queueEntry))
	mount("/v1/runs/", http.HandlerFunc(h.runEntry))
}

type queueEntryInfo struct {
	Name         string `json:"name"`
	SpecID       string `json:"spec-id,omitempty"`
	Uninstalling bool   `json:"uninstalling"`
}

func (h *Handler) queue(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listRuns(w)
	case http.MethodPost:
		h.submitRun(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listRuns(w http.ResponseWriter) {
	entries := []queueEntryInfo{}
	for _, name := range h.manager.Names() {
		hosted, ok := h.manager.Get(name)
		if !ok {
			continue
		}
		entry := queueEntryInfo{Name: name, Uninstalling: hosted.Mode() == run.Uninstalling}
		if specID, ok, err := h.specStore.SpecID(hosted.StateStore()); err == nil && ok {
			entry.SpecID = specID
		}
		entries = append(entries, entry)
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) submitRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("expected multipart form: %v", err), http.StatusBadRequest)
		return
	}
	specType := r.FormValue("type")
	gen, resolvedType, ok := h.registry.Get(specType)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown type %q; installed types: %v", specType, h.registry.Types()),
			http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := ioutil.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("reading payload: %v", err), http.StatusBadRequest)
		return
	}
	if limit := gen.MaxDataSizeBytes(); limit > 0 && len(data) > limit {
		http.Error(w, fmt.Sprintf("payload of %d bytes exceeds %d byte limit for type %s",
			len(data), limit, resolvedType), http.StatusBadRequest)
		return
	}

	generated, err := gen.Generate(data)
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid %s submission: %v", resolvedType, err), http.StatusBadRequest)
		return
	}
	if _, present := h.manager.Get(generated.Name()); present {
		http.Error(w, fmt.Sprintf("service named '%s' is already present", generated.Name()),
			http.StatusBadRequest)
		return
	}

	specID, err := h.specStore.Store(generated.StateStore(), data, resolvedType)
	if err != nil {
		status := http.StatusInternalServerError
		if serr, isStorage := err.(*state.Error); isStorage && serr.Reason == state.InvalidArgument {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if err := h.manager.Put(generated); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Infof("Admitted service %s (spec %s)", generated.Name(), specID)
	writeJSON(w, http.StatusOK, queueEntryInfo{Name: generated.Name(), SpecID: specID})
}

func (h *Handler) queueEntry(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/v1/queue/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if _, present := h.manager.Get(name); !present {
		http.Error(w, fmt.Sprintf("no service named '%s'", name), http.StatusNotFound)
		return
	}
	h.manager.StartUninstall([]string{name})
	writeJSON(w, http.StatusOK, map[string]string{"name": name, "status": "uninstalling"})
}

func (h *Handler) runEntry(w http.ResponseWriter, r *http.Request) {
	// /v1/runs/{name}/state
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/v1/runs/"), "/")
	if len(parts) != 2 || parts[1] != "state" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	hosted, present := h.manager.Get(parts[0])
	if !present {
		http.Error(w, fmt.Sprintf("no service named '%s'", parts[0]), http.StatusNotFound)
		return
	}

	stateStore := hosted.StateStore()
	properties := map[string]string{}
	names, err := stateStore.PropertyNames()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, name := range names {
		if data, err := stateStore.FetchProperty(name); err == nil {
			properties[name] = string(data)
		}
	}
	tasks := map[string]string{}
	records, err := stateStore.FetchTaskRecords()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for _, record := range records {
		tasks[record.Name] = record.State
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":       parts[0],
		"properties": properties,
		"tasks":      tasks,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}
