// Package attendance appends entries to the records document. Entries are
// append-only; there is no edit or delete path.
package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

var validate = validator.New()

type Recorder struct {
	sess *session.Session
	loc  *time.Location
}

func NewRecorder(sess *session.Session, loc *time.Location) *Recorder {
	return &Recorder{sess: sess, loc: loc}
}

// newRegistoID generates record identifiers. Millisecond-derived ids collide
// inside the per-student fan-out, so the id is a UUID behind the R prefix the
// stored documents already carry.
func newRegistoID() string {
	return "R" + uuid.NewString()
}

func (r *Recorder) today() string {
	return time.Now().In(r.loc).Format("2006-01-02")
}

// Record expands one submission into one entry per student in the group, or
// exactly one entry with a null student when the group has no roster, then
// persists the whole records document.
func (r *Recorder) Record(ctx context.Context, grupoID, date, numeroLicao, sumario string, presenca bool) (int, session.Outcome, error) {
	var grupo *models.Grupo
	r.sess.ViewConfig(func(cfg *models.Config) {
		if g := cfg.GrupoByID(grupoID); g != nil {
			cp := *g
			grupo = &cp
		}
	})
	if grupo == nil {
		return 0, session.Outcome{}, apperrors.ErrNotFound
	}
	if date == "" {
		date = r.today()
	}

	students := grupo.StudentIDs
	if len(students) == 0 {
		students = []string{""}
	}

	regs := make([]models.Registo, 0, len(students))
	for _, alunoID := range students {
		reg := models.Registo{
			ID:           newRegistoID(),
			Data:         date,
			ProfessorID:  grupo.ProfessorID,
			DisciplinaID: grupo.DisciplinaID,
			Presenca:     presenca,
			NumeroLicao:  numeroLicao,
			Sumario:      sumario,
			HoraInicio:   optional(grupo.Inicio),
			HoraFim:      optional(grupo.Fim),
		}
		if alunoID != "" {
			id := alunoID
			reg.AlunoID = &id
		}
		regs = append(regs, reg)
	}

	outcome := r.sess.AppendRegistos(ctx, regs)
	return len(regs), outcome, nil
}

// Prefill carries the lesson number and summary of a previous entry.
type Prefill struct {
	NumeroLicao string `json:"numeroLicao"`
	Sumario     string `json:"sumario"`
}

// DuplicatePrevious scans the records newest-first for the group's teacher
// and subject with a non-null student and returns its fields. found=false is
// the explicit "nothing to duplicate" signal, not an error.
func (r *Recorder) DuplicatePrevious(grupoID string) (Prefill, bool, error) {
	var grupo *models.Grupo
	r.sess.ViewConfig(func(cfg *models.Config) {
		if g := cfg.GrupoByID(grupoID); g != nil {
			cp := *g
			grupo = &cp
		}
	})
	if grupo == nil {
		return Prefill{}, false, apperrors.ErrNotFound
	}

	var pre Prefill
	found := false
	r.sess.ViewRecords(func(reg *models.Records) {
		for i := len(reg.Registos) - 1; i >= 0; i-- {
			e := reg.Registos[i]
			if e.ProfessorID == grupo.ProfessorID && e.DisciplinaID == grupo.DisciplinaID && e.AlunoID != nil {
				pre = Prefill{NumeroLicao: e.NumeroLicao, Sumario: e.Sumario}
				found = true
				return
			}
		}
	})
	return pre, found, nil
}

// ManualInput is a hand-authored record from the manual entry dialog.
type ManualInput struct {
	ProfessorID  string  `json:"professorId" validate:"required"`
	DisciplinaID string  `json:"disciplinaId" validate:"required"`
	AlunoID      *string `json:"alunoId"`
	NumeroLicao  string  `json:"numeroLicao"`
	Sumario      string  `json:"sumario"`
	HoraInicio   string  `json:"horaInicio"`
	HoraFim      string  `json:"horaFim"`
}

// Manual appends a single hand-authored entry dated today and marked
// present.
func (r *Recorder) Manual(ctx context.Context, in ManualInput) (models.Registo, session.Outcome, error) {
	if err := validate.Struct(in); err != nil {
		return models.Registo{}, session.Outcome{}, asValidationError(err)
	}

	reg := models.Registo{
		ID:           newRegistoID(),
		Data:         r.today(),
		ProfessorID:  in.ProfessorID,
		AlunoID:      in.AlunoID,
		DisciplinaID: in.DisciplinaID,
		Presenca:     true,
		NumeroLicao:  in.NumeroLicao,
		Sumario:      in.Sumario,
		HoraInicio:   optional(in.HoraInicio),
		HoraFim:      optional(in.HoraFim),
	}
	outcome := r.sess.AppendRegistos(ctx, []models.Registo{reg})
	return reg, outcome, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func asValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError(err.Error())
	}
	fields := make([]apperrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperrors.FieldError{Field: fe.Field(), Text: "this field is " + fe.Tag()})
	}
	return apperrors.NewValidationError("invalid record", fields...)
}
