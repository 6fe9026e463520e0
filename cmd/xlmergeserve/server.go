package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ruslano69/xlmerge/pkg/history"
	"github.com/ruslano69/xlmerge/pkg/merge"
	"github.com/ruslano69/xlmerge/pkg/xlsx"
)

// newRouter wires all dependencies and returns the chi router.
func newRouter(cfg *Config, repo history.Repository, saver *history.Saver) http.Handler {
	r := chi.NewRouter()

	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(2 * time.Minute))

	h := &mergeHandler{cfg: cfg, repo: repo, saver: saver}

	r.Get("/healthz", handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/merge", h.Merge)

	r.Route("/api/history", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/clear", h.Clear)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/clean", h.Download(false))
		r.Get("/{id}/colored", h.Download(true))
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// mergeHandler handles /api/merge and /api/history.
type mergeHandler struct {
	cfg   *Config
	repo  history.Repository
	saver *history.Saver
}

// sourceSummary describes one prepared source in the merge response.
type sourceSummary struct {
	Name       string `json:"name"`
	KeyColumn  string `json:"key_column"`
	Rows       int    `json:"rows"`
	Duplicates int    `json:"duplicates"`
}

type mergeResponse struct {
	Stats     merge.Stats     `json:"stats"`
	Sources   []sourceSummary `json:"sources"`
	Warnings  []string        `json:"warnings,omitempty"`
	Record    *history.Record `json:"record,omitempty"`
	SaveError string          `json:"save_error,omitempty"`
}

// ────────────────────────────────────────────────────────────────────────────
// POST /api/merge
//
// multipart/form-data:
//
//	files      two or more .xlsx uploads
//	join       outer|inner|left|right (default от конфига)
//	fill       null-fill value
//	prefix     1/true to prefix non-key columns with the file name
//	basename   output base name (sanitized server-side)
//	save       1/true to persist artifacts + history record
//	overwrite  1/true to overwrite instead of suffixing
//	keys       optional JSON object {"file.xlsx": "key column"}
// ────────────────────────────────────────────────────────────────────────────

func (h *mergeHandler) Merge(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.Server.MaxUploadMB << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	uploads := r.MultipartForm.File["files"]
	if len(uploads) < 2 {
		writeError(w, http.StatusBadRequest, "at least 2 files are required")
		return
	}

	keyOverrides := map[string]string{}
	if raw := r.FormValue("keys"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &keyOverrides); err != nil {
			writeError(w, http.StatusBadRequest, "invalid keys json: "+err.Error())
			return
		}
	}

	opts, err := h.options(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sources := make([]merge.RawSource, 0, len(uploads))
	for _, fh := range uploads {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "open upload "+fh.Filename+": "+err.Error())
			return
		}
		t, err := xlsx.Read(f, fh.Filename, "")
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sources = append(sources, merge.RawSource{
			Spec: merge.SourceSpec{
				Name:      fh.Filename,
				KeyColumn: keyOverrides[fh.Filename],
			},
			Table: t,
		})
	}

	result, err := merge.Run(sources, opts)
	if err != nil {
		var missing *merge.MissingKeyColumnError
		var merr *merge.MergeError
		switch {
		case errors.As(err, &missing):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &merr):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	resp := mergeResponse{Stats: result.Stats}
	for i, p := range result.Prepared {
		resp.Sources = append(resp.Sources, sourceSummary{
			Name:       p.Name,
			KeyColumn:  effectiveKey(sources[i], keyOverrides),
			Rows:       p.Table.RowCount(),
			Duplicates: p.Duplicates,
		})
	}
	for _, warn := range result.Warnings {
		resp.Warnings = append(resp.Warnings, warn.String())
	}

	if isSet(r.FormValue("save")) || h.cfg.Merge.AutoSave {
		rec, err := h.saver.Save(r.Context(), history.SaveRequest{
			BaseName:   r.FormValue("basename"),
			Clean:      result.Clean,
			Annotated:  result.Annotated,
			FlagColumn: merge.UnmatchedColumn,
			Overwrite:  isSet(r.FormValue("overwrite")) || h.cfg.Merge.Overwrite,
		})
		if err != nil {
			// Persistence failure is a warning: the merge itself
			// succeeded and the caller can retry the save.
			log.Warn().Err(err).Msg("save failed")
			resp.SaveError = err.Error()
		} else {
			resp.Record = rec
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// options assembles merge options from request fields over config defaults.
func (h *mergeHandler) options(r *http.Request) (merge.Options, error) {
	joinRaw := r.FormValue("join")
	if joinRaw == "" {
		joinRaw = h.cfg.Merge.JoinMode
	}
	mode, err := merge.ParseJoinMode(joinRaw)
	if err != nil {
		return merge.Options{}, err
	}

	fill := h.cfg.Merge.FillValue
	if v := r.FormValue("fill"); v != "" {
		fill = v
	}

	prefix := h.cfg.Merge.Prefix
	if v := r.FormValue("prefix"); v != "" {
		prefix = isSet(v)
	}

	return merge.Options{JoinMode: mode, FillValue: fill, Prefix: prefix}, nil
}

func effectiveKey(src merge.RawSource, overrides map[string]string) string {
	if k, ok := overrides[src.Spec.Name]; ok && k != "" {
		return k
	}
	return merge.GuessKeyColumn(src.Table)
}

// ────────────────────────────────────────────────────────────────────────────
// History endpoints
// ────────────────────────────────────────────────────────────────────────────

func (h *mergeHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.repo.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *mergeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}
	err = h.repo.Delete(r.Context(), id, isSet(r.URL.Query().Get("files")))
	if errors.Is(err, history.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *mergeHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Clear(r.Context(), isSet(r.URL.Query().Get("files"))); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Download serves a stored artifact file by record id.
func (h *mergeHandler) Download(colored bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid record id")
			return
		}
		records, err := h.repo.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, rec := range records {
			if rec.ID != id {
				continue
			}
			path := rec.CleanPath
			if colored {
				path = rec.ColoredPath
			}
			if path == "" {
				writeError(w, http.StatusNotFound, "artifact not recorded")
				return
			}
			w.Header().Set("Content-Type",
				"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			http.ServeFile(w, r, path)
			return
		}
		writeError(w, http.StatusNotFound, "record not found")
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────────────────────────────────

func isSet(v string) bool {
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
