// Package admin is the administrator-only CRUD surface over the
// configuration document. Every mutation goes through the session and
// schedules a debounced autosave.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

var validate = validator.New()

// Collection names as they appear in the document and in the API paths.
const (
	ColProfessores = "professores"
	ColAlunos      = "alunos"
	ColDisciplinas = "disciplinas"
	ColGrupos      = "grupos"
)

// Notifier schedules a debounced configuration save.
type Notifier interface {
	Notify(ctx context.Context)
}

// Authorizer decides whether an identity may use the admin surface.
type Authorizer interface {
	IsAdmin(email string) bool
}

type Editor struct {
	sess     *session.Session
	autosave Notifier
	authz    Authorizer
}

func NewEditor(sess *session.Session, autosave Notifier, authz Authorizer) *Editor {
	return &Editor{sess: sess, autosave: autosave, authz: authz}
}

// Authorize gates the surface: an "admin" role claim from the identity
// provider, or membership in the configured administrator list.
func (e *Editor) Authorize(id ctxutil.Identity) error {
	if id.HasRole("admin") || e.authz.IsAdmin(id.Email) {
		return nil
	}
	return apperrors.ErrNotFound
}

// List returns the collection as JSON.
func (e *Editor) List(collection string) ([]byte, error) {
	var out []byte
	var err error
	e.sess.ViewConfig(func(cfg *models.Config) {
		switch collection {
		case ColProfessores:
			out, err = json.Marshal(cfg.Professores)
		case ColAlunos:
			out, err = json.Marshal(cfg.Alunos)
		case ColDisciplinas:
			out, err = json.Marshal(cfg.Disciplinas)
		case ColGrupos:
			out, err = json.Marshal(cfg.Grupos)
		default:
			err = fmt.Errorf("%w: collection %s", apperrors.ErrNotFound, collection)
		}
	})
	return out, err
}

// Add decodes body as one entity of the collection and appends it. The id is
// required and must not already exist in the collection; the check is
// case-insensitive.
func (e *Editor) Add(ctx context.Context, collection string, body []byte) error {
	switch collection {
	case ColProfessores:
		var p models.Professor
		if err := decode(body, &p); err != nil {
			return err
		}
		return e.mutate(ctx, func(cfg *models.Config) error {
			if hasID(idsOfProfessores(cfg.Professores), p.ID) {
				return dupErr(p.ID)
			}
			cfg.Professores = append(cfg.Professores, p)
			return nil
		})
	case ColAlunos:
		var a models.Aluno
		if err := decode(body, &a); err != nil {
			return err
		}
		return e.mutate(ctx, func(cfg *models.Config) error {
			if hasID(idsOfAlunos(cfg.Alunos), a.ID) {
				return dupErr(a.ID)
			}
			cfg.Alunos = append(cfg.Alunos, a)
			return nil
		})
	case ColDisciplinas:
		var d models.Disciplina
		if err := decode(body, &d); err != nil {
			return err
		}
		return e.mutate(ctx, func(cfg *models.Config) error {
			if hasID(idsOfDisciplinas(cfg.Disciplinas), d.ID) {
				return dupErr(d.ID)
			}
			cfg.Disciplinas = append(cfg.Disciplinas, d)
			return nil
		})
	case ColGrupos:
		var g models.Grupo
		if err := decode(body, &g); err != nil {
			return err
		}
		return e.mutate(ctx, func(cfg *models.Config) error {
			if hasID(idsOfGrupos(cfg.Grupos), g.ID) {
				return dupErr(g.ID)
			}
			cfg.Grupos = append(cfg.Grupos, g)
			return nil
		})
	default:
		return fmt.Errorf("%w: collection %s", apperrors.ErrNotFound, collection)
	}
}

// Update replaces the entity with the given id in place, keeping document
// order. The id in the path wins over any id in the body.
func (e *Editor) Update(ctx context.Context, collection, id string, body []byte) error {
	switch collection {
	case ColProfessores:
		var p models.Professor
		if err := decode(body, &p); err != nil {
			return err
		}
		p.ID = id
		return e.mutate(ctx, func(cfg *models.Config) error {
			for i := range cfg.Professores {
				if cfg.Professores[i].ID == id {
					cfg.Professores[i] = p
					return nil
				}
			}
			return apperrors.ErrNotFound
		})
	case ColAlunos:
		var a models.Aluno
		if err := decode(body, &a); err != nil {
			return err
		}
		a.ID = id
		return e.mutate(ctx, func(cfg *models.Config) error {
			for i := range cfg.Alunos {
				if cfg.Alunos[i].ID == id {
					cfg.Alunos[i] = a
					return nil
				}
			}
			return apperrors.ErrNotFound
		})
	case ColDisciplinas:
		var d models.Disciplina
		if err := decode(body, &d); err != nil {
			return err
		}
		d.ID = id
		return e.mutate(ctx, func(cfg *models.Config) error {
			for i := range cfg.Disciplinas {
				if cfg.Disciplinas[i].ID == id {
					cfg.Disciplinas[i] = d
					return nil
				}
			}
			return apperrors.ErrNotFound
		})
	case ColGrupos:
		var g models.Grupo
		if err := decode(body, &g); err != nil {
			return err
		}
		g.ID = id
		return e.mutate(ctx, func(cfg *models.Config) error {
			for i := range cfg.Grupos {
				if cfg.Grupos[i].ID == id {
					cfg.Grupos[i] = g
					return nil
				}
			}
			return apperrors.ErrNotFound
		})
	default:
		return fmt.Errorf("%w: collection %s", apperrors.ErrNotFound, collection)
	}
}

// Delete removes the entity with the given id. Records referencing it are
// left alone; dangling references degrade to placeholder labels.
func (e *Editor) Delete(ctx context.Context, collection, id string) error {
	return e.mutate(ctx, func(cfg *models.Config) error {
		switch collection {
		case ColProfessores:
			for i := range cfg.Professores {
				if cfg.Professores[i].ID == id {
					cfg.Professores = append(cfg.Professores[:i], cfg.Professores[i+1:]...)
					return nil
				}
			}
		case ColAlunos:
			for i := range cfg.Alunos {
				if cfg.Alunos[i].ID == id {
					cfg.Alunos = append(cfg.Alunos[:i], cfg.Alunos[i+1:]...)
					return nil
				}
			}
		case ColDisciplinas:
			for i := range cfg.Disciplinas {
				if cfg.Disciplinas[i].ID == id {
					cfg.Disciplinas = append(cfg.Disciplinas[:i], cfg.Disciplinas[i+1:]...)
					return nil
				}
			}
		case ColGrupos:
			for i := range cfg.Grupos {
				if cfg.Grupos[i].ID == id {
					cfg.Grupos = append(cfg.Grupos[:i], cfg.Grupos[i+1:]...)
					return nil
				}
			}
		}
		return apperrors.ErrNotFound
	})
}

// Calendario returns the opaque calendar mapping.
func (e *Editor) Calendario() []byte {
	var out []byte
	e.sess.ViewConfig(func(cfg *models.Config) {
		out = append([]byte(nil), cfg.Calendario...)
	})
	if len(out) == 0 {
		out = []byte(`{}`)
	}
	return out
}

// ReplaceCalendario swaps the calendar mapping wholesale; the content is
// passed through unmodified.
func (e *Editor) ReplaceCalendario(ctx context.Context, body []byte) error {
	if !json.Valid(body) {
		return apperrors.NewValidationError("invalid calendar JSON")
	}
	return e.mutate(ctx, func(cfg *models.Config) error {
		cfg.Calendario = append(json.RawMessage(nil), body...)
		return nil
	})
}

// ReplaceConfig is the JSON import: the whole configuration document is
// replaced in memory, then autosaved. Nothing of the previous document
// survives.
func (e *Editor) ReplaceConfig(ctx context.Context, body []byte) error {
	var next models.Config
	if err := json.Unmarshal(body, &next); err != nil {
		return apperrors.NewValidationError("invalid configuration JSON")
	}
	return e.mutate(ctx, func(cfg *models.Config) error {
		*cfg = next
		return nil
	})
}

// ReplaceProfessores is the tabular import: the teacher list is replaced
// wholesale, non-additive.
func (e *Editor) ReplaceProfessores(ctx context.Context, profs []models.Professor) error {
	return e.mutate(ctx, func(cfg *models.Config) error {
		cfg.Professores = profs
		return nil
	})
}

func (e *Editor) mutate(ctx context.Context, fn func(cfg *models.Config) error) error {
	if err := e.sess.MutateConfig(fn); err != nil {
		return err
	}
	e.autosave.Notify(ctx)
	return nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apperrors.NewValidationError("invalid JSON body")
	}
	if err := validate.Struct(v); err != nil {
		return apperrors.NewValidationError("missing required field",
			apperrors.FieldError{Field: "id", Text: "an id must be supplied"})
	}
	return nil
}

func dupErr(id string) error {
	return apperrors.NewValidationError("duplicate identifier",
		apperrors.FieldError{Field: "id", Text: fmt.Sprintf("id %q already exists", id)})
}

func hasID(ids []string, id string) bool {
	for _, v := range ids {
		if strings.EqualFold(v, id) {
			return true
		}
	}
	return false
}

func idsOfProfessores(xs []models.Professor) []string {
	out := make([]string, len(xs))
	for i := range xs {
		out[i] = xs[i].ID
	}
	return out
}

func idsOfAlunos(xs []models.Aluno) []string {
	out := make([]string, len(xs))
	for i := range xs {
		out[i] = xs[i].ID
	}
	return out
}

func idsOfDisciplinas(xs []models.Disciplina) []string {
	out := make([]string, len(xs))
	for i := range xs {
		out[i] = xs[i].ID
	}
	return out
}

func idsOfGrupos(xs []models.Grupo) []string {
	out := make([]string, len(xs))
	for i := range xs {
		out[i] = xs[i].ID
	}
	return out
}
