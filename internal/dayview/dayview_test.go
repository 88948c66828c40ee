package dayview

import (
	"testing"
	"time"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
)

func testConfig() *models.Config {
	cfg := models.DefaultConfig()
	cfg.Professores = []models.Professor{
		{ID: "EE7", Nome: "Ana", Email: "prof@esparedes.pt"},
	}
	cfg.Disciplinas = []models.Disciplina{
		{ID: "Of.P", Nome: "Oficina de Projeto"},
	}
	cfg.Grupos = []models.Grupo{
		{ID: "G1", ProfessorID: "EE7", DisciplinaID: "Of.P", Inicio: "10:00", Fim: "10:50", Sala: "B12", StudentIDs: []string{"9I4", "9I5"}},
	}
	return cfg
}

func TestRenderMatchingTeacher(t *testing.T) {
	v := Render(testConfig(), "PROF@esparedes.pt", "2026-03-02", time.UTC)
	if v.State != StateSessions {
		t.Fatalf("state = %s, want %s", v.State, StateSessions)
	}
	if len(v.Cards) != 1 {
		t.Fatalf("cards = %d, want 1", len(v.Cards))
	}
	c := v.Cards[0]
	if c.DisciplinaNome != "Oficina de Projeto" || c.Sala != "B12" || c.Alunos != 2 {
		t.Fatalf("unexpected card: %+v", c)
	}
}

func TestRenderNotRecognized(t *testing.T) {
	cfg := testConfig()
	cfg.Professores[0].Email = "someone-else@esparedes.pt"
	v := Render(cfg, "prof@esparedes.pt", "2026-03-02", time.UTC)
	if v.State != StateNotRecognized {
		t.Fatalf("state = %s, want %s", v.State, StateNotRecognized)
	}
	if len(v.Cards) != 0 {
		t.Fatalf("cards = %d, want 0", len(v.Cards))
	}
}

func TestRenderNoSessionsDistinctFromNotRecognized(t *testing.T) {
	cfg := testConfig()
	cfg.Grupos = nil
	v := Render(cfg, "prof@esparedes.pt", "", time.UTC)
	if v.State != StateNoSessions {
		t.Fatalf("state = %s, want %s", v.State, StateNoSessions)
	}
	if v.Data == "" {
		t.Fatal("empty date must default to today")
	}
}

func TestRenderFallbacks(t *testing.T) {
	cfg := testConfig()
	cfg.Grupos[0] = models.Grupo{ID: "G2", ProfessorID: "EE7", DisciplinaID: "MISSING"}
	v := Render(cfg, "prof@esparedes.pt", "2026-03-02", time.UTC)
	c := v.Cards[0]
	if c.DisciplinaNome != "MISSING" {
		t.Fatalf("dangling subject must fall back to raw id, got %q", c.DisciplinaNome)
	}
	if c.Inicio != "08:15" || c.Fim != "09:05" || c.Sala != "-" {
		t.Fatalf("defaults not applied: %+v", c)
	}
}

func TestRenderKeepsDocumentOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Grupos = append(cfg.Grupos,
		models.Grupo{ID: "G0", ProfessorID: "EE7", DisciplinaID: "Of.P", Inicio: "08:15"},
	)
	v := Render(cfg, "prof@esparedes.pt", "2026-03-02", time.UTC)
	if v.Cards[0].GrupoID != "G1" || v.Cards[1].GrupoID != "G0" {
		t.Fatalf("groups re-sorted: %+v", v.Cards)
	}
}
