package models

import (
	"encoding/json"
	"strings"
)

// Documents live on the remote drive as whole JSON files; field names match the
// on-disk format and must not change without migrating the stored documents.

type Professor struct {
	ID    string `json:"id" validate:"required"`
	Nome  string `json:"nome"`
	Email string `json:"email"`
}

type Aluno struct {
	ID    string `json:"id" validate:"required"`
	Nome  string `json:"nome"`
	Turma string `json:"turma"`
}

type Disciplina struct {
	ID   string `json:"id" validate:"required"`
	Nome string `json:"nome"`
}

// Grupo is a recurring class session: a teacher, a subject, a time window and
// an optional student roster.
type Grupo struct {
	ID           string   `json:"id" validate:"required"`
	ProfessorID  string   `json:"professorId" validate:"required"`
	DisciplinaID string   `json:"disciplinaId" validate:"required"`
	Inicio       string   `json:"inicio"`
	Fim          string   `json:"fim"`
	Sala         string   `json:"sala"`
	StudentIDs   []string `json:"studentIds,omitempty"`
}

type Config struct {
	Professores []Professor     `json:"professores"`
	Alunos      []Aluno         `json:"alunos"`
	Disciplinas []Disciplina    `json:"disciplinas"`
	Grupos      []Grupo         `json:"grupos"`
	Calendario  json.RawMessage `json:"calendario"`
}

// DefaultConfig is the shape written on first use: empty collections, empty
// calendar object. Slices are non-nil so the document marshals with [] not null.
func DefaultConfig() *Config {
	return &Config{
		Professores: []Professor{},
		Alunos:      []Aluno{},
		Disciplinas: []Disciplina{},
		Grupos:      []Grupo{},
		Calendario:  json.RawMessage(`{}`),
	}
}

// ProfessorByEmail matches the signed-in identity against the teacher list,
// case-insensitive exact match.
func (c *Config) ProfessorByEmail(email string) *Professor {
	if email == "" {
		return nil
	}
	for i := range c.Professores {
		if strings.EqualFold(c.Professores[i].Email, email) {
			return &c.Professores[i]
		}
	}
	return nil
}

// DisciplinaNome resolves a subject name. Dangling references degrade to the
// raw id as a placeholder label.
func (c *Config) DisciplinaNome(id string) string {
	for i := range c.Disciplinas {
		if c.Disciplinas[i].ID == id {
			return c.Disciplinas[i].Nome
		}
	}
	return id
}

func (c *Config) GrupoByID(id string) *Grupo {
	for i := range c.Grupos {
		if c.Grupos[i].ID == id {
			return &c.Grupos[i]
		}
	}
	return nil
}
