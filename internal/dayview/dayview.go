// Package dayview derives the "today's sessions" view for the signed-in
// teacher. Pure derivation, no persistence.
package dayview

import (
	"time"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
)

// View states. A teacher with no groups is a distinct state from an
// unrecognised teacher.
const (
	StateSessions      = "sessions"
	StateNoSessions    = "no-sessions"
	StateNotRecognized = "not-recognized"
)

// Default time window shown when a group defines none.
const (
	defaultInicio = "08:15"
	defaultFim    = "09:05"
)

type Card struct {
	GrupoID        string `json:"grupoId"`
	DisciplinaID   string `json:"disciplinaId"`
	DisciplinaNome string `json:"disciplinaNome"`
	Sala           string `json:"sala"`
	Inicio         string `json:"inicio"`
	Fim            string `json:"fim"`
	Alunos         int    `json:"alunos"`
}

type View struct {
	State     string `json:"state"`
	Data      string `json:"data"`
	Professor string `json:"professorId,omitempty"`
	Cards     []Card `json:"sessoes,omitempty"`
}

// Render builds the day view for identity on date. An empty date defaults to
// today in loc. Groups keep document order; nothing is re-sorted.
func Render(cfg *models.Config, email, date string, loc *time.Location) View {
	if date == "" {
		date = time.Now().In(loc).Format("2006-01-02")
	}

	prof := cfg.ProfessorByEmail(email)
	if prof == nil {
		return View{State: StateNotRecognized, Data: date}
	}

	var cards []Card
	for _, g := range cfg.Grupos {
		if g.ProfessorID != prof.ID {
			continue
		}
		c := Card{
			GrupoID:        g.ID,
			DisciplinaID:   g.DisciplinaID,
			DisciplinaNome: cfg.DisciplinaNome(g.DisciplinaID),
			Sala:           g.Sala,
			Inicio:         g.Inicio,
			Fim:            g.Fim,
			Alunos:         len(g.StudentIDs),
		}
		if c.Sala == "" {
			c.Sala = "-"
		}
		if c.Inicio == "" {
			c.Inicio = defaultInicio
		}
		if c.Fim == "" {
			c.Fim = defaultFim
		}
		cards = append(cards, c)
	}

	if len(cards) == 0 {
		return View{State: StateNoSessions, Data: date, Professor: prof.ID}
	}
	return View{State: StateSessions, Data: date, Professor: prof.ID, Cards: cards}
}
