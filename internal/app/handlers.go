package app

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/admin"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/attendance"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/backup"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/config"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/dayview"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/roster"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

// Handlers carries the explicitly owned collaborators; no package globals.
type Handlers struct {
	Cfg      *config.Config
	Sess     *session.Session
	Recorder *attendance.Recorder
	Editor   *admin.Editor
	Backup   *backup.Runner
}

// maximum accepted import upload
const maxImportSize = 10 << 20

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	id, _ := ctxutil.IdentityFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"email":  id.Email,
		"nome":   id.Name,
		"status": h.Sess.Status(),
		"admin":  h.Editor.Authorize(id) == nil,
	})
}

// refreshSession reruns the sign-in load sequencing with the caller's
// credential. Never fails; degraded loads surface as offline status.
func (h *Handlers) refreshSession(w http.ResponseWriter, r *http.Request) {
	st := h.Sess.Load(ctxutil.WithOp(r.Context(), "session-load"))
	writeJSON(w, http.StatusOK, map[string]any{"status": st})
}

func (h *Handlers) getDay(w http.ResponseWriter, r *http.Request) {
	id, _ := ctxutil.IdentityFrom(r.Context())
	date := r.URL.Query().Get("date")

	var view dayview.View
	h.Sess.ViewConfig(func(cfg *models.Config) {
		view = dayview.Render(cfg, id.Email, date, h.Cfg.Location)
	})
	writeJSON(w, http.StatusOK, view)
}

type attendanceReq struct {
	Data        string `json:"data"`
	NumeroLicao string `json:"numeroLicao"`
	Sumario     string `json:"sumario"`
	Presenca    bool   `json:"presenca"`
}

func (h *Handlers) postAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	grupoID := chi.URLParam(r, "id")

	n, outcome, err := h.Recorder.Record(r.Context(), grupoID, req.Data,
		strings.TrimSpace(req.NumeroLicao), strings.TrimSpace(req.Sumario), req.Presenca)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"registos": n,
		"outcome":  outcome,
		"status":   h.Sess.Status(),
	})
}

func (h *Handlers) getDuplicate(w http.ResponseWriter, r *http.Request) {
	pre, found, err := h.Recorder.DuplicatePrevious(chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": found, "prefill": pre})
}

func (h *Handlers) postManual(w http.ResponseWriter, r *http.Request) {
	var in attendance.ManualInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErr(w, apperrors.NewValidationError("invalid JSON body"))
		return
	}
	reg, outcome, err := h.Recorder.Manual(r.Context(), in)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"registo": reg,
		"outcome": outcome,
		"status":  h.Sess.Status(),
	})
}

// requireAdmin guards the admin route group.
func (h *Handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := ctxutil.IdentityFrom(r.Context())
		if !ok || h.Editor.Authorize(id) != nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "administrator access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) adminList(w http.ResponseWriter, r *http.Request) {
	body, err := h.Editor.List(chi.URLParam(r, "collection"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeRawJSON(w, http.StatusOK, body)
}

func (h *Handlers) adminAdd(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Editor.Add(r.Context(), chi.URLParam(r, "collection"), body); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"result": "added"})
}

func (h *Handlers) adminUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Editor.Update(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id"), body); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "updated"})
}

func (h *Handlers) adminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.Editor.Delete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "id")); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "deleted"})
}

func (h *Handlers) adminCalendario(w http.ResponseWriter, r *http.Request) {
	writeRawJSON(w, http.StatusOK, h.Editor.Calendario())
}

func (h *Handlers) adminReplaceCalendario(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Editor.ReplaceCalendario(r.Context(), body); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": "replaced"})
}

// adminImport accepts a multipart upload: a .json file replaces the whole
// configuration, anything else is parsed as an XLSX teacher sheet and
// replaces the teacher list. Both replace wholesale, never merge.
func (h *Handlers) adminImport(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeErr(w, apperrors.NewValidationError("invalid multipart upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, apperrors.NewValidationError("missing file field"))
		return
	}
	defer func() { _ = file.Close() }()

	name := strings.ToLower(header.Filename)
	if filepath.Ext(name) == ".json" {
		body, err := io.ReadAll(io.LimitReader(file, maxImportSize))
		if err != nil {
			writeErr(w, err)
			return
		}
		if err := h.Editor.ReplaceConfig(r.Context(), body); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"result": "config replaced", "file": header.Filename})
		return
	}

	profs, err := roster.ParseProfessores(file)
	if err != nil {
		writeErr(w, err)
		return
	}
	if err := h.Editor.ReplaceProfessores(r.Context(), profs); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": "professores replaced", "file": header.Filename, "count": len(profs),
	})
}

func (h *Handlers) adminExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Disposition", `attachment; filename="config_especial.json"`)
	writeRawJSON(w, http.StatusOK, h.Sess.ConfigJSON())
}

func (h *Handlers) adminExportXLSX(w http.ResponseWriter, r *http.Request) {
	var profs []models.Professor
	h.Sess.ViewConfig(func(cfg *models.Config) {
		profs = append(profs, cfg.Professores...)
	})
	f, err := roster.ExportProfessores(profs)
	if err != nil {
		writeErr(w, err)
		return
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="professores.xlsx"`)
	_, _ = w.Write(buf.Bytes())
}

// adminSave is the explicit "save to drive now" action, bypassing the
// debounce.
func (h *Handlers) adminSave(w http.ResponseWriter, r *http.Request) {
	outcome := h.Sess.SaveConfig(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"outcome": outcome, "status": h.Sess.Status()})
}

func (h *Handlers) adminBackup(w http.ResponseWriter, r *http.Request) {
	path, err := h.Backup.Run(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"backup": path})
}
