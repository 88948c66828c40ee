package admin

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/ctxutil"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/mirror"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/session"
)

type nullStore struct{}

func (nullStore) Load(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (nullStore) Save(context.Context, string, any) error            { return nil }

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) Notify(context.Context) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

type listAuthz struct{ emails map[string]bool }

func (a listAuthz) IsAdmin(email string) bool { return a.emails[email] }

func newEditor(t *testing.T) (*Editor, *session.Session, *countingNotifier) {
	t.Helper()
	m, err := mirror.Open(filepath.Join(t.TempDir(), "mirror.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = m.Close() })

	sess := session.New(nullStore{}, m, session.Paths{Config: "/cfg.json", Records: "/reg.json"}, zap.NewNop())
	sess.Load(context.Background())

	notif := &countingNotifier{}
	ed := NewEditor(sess, notif, listAuthz{emails: map[string]bool{"dir@esparedes.pt": true}})
	return ed, sess, notif
}

func seedProfessor(t *testing.T, ed *Editor, id, nome string) {
	t.Helper()
	body, _ := json.Marshal(models.Professor{ID: id, Nome: nome})
	if err := ed.Add(context.Background(), ColProfessores, body); err != nil {
		t.Fatal(err)
	}
}

func TestAuthorize(t *testing.T) {
	ed, _, _ := newEditor(t)

	if err := ed.Authorize(ctxutil.Identity{Email: "dir@esparedes.pt"}); err != nil {
		t.Fatalf("listed administrator rejected: %v", err)
	}
	if err := ed.Authorize(ctxutil.Identity{Email: "prof@esparedes.pt", Roles: []string{"admin"}}); err != nil {
		t.Fatalf("admin role rejected: %v", err)
	}
	if err := ed.Authorize(ctxutil.Identity{Email: "prof@esparedes.pt"}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddAndList(t *testing.T) {
	ed, _, notif := newEditor(t)

	seedProfessor(t, ed, "T9", "Ana")
	if notif.count() != 1 {
		t.Fatalf("notifies = %d, want 1", notif.count())
	}

	body, err := ed.List(ColProfessores)
	if err != nil {
		t.Fatal(err)
	}
	var got []models.Professor
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "T9" || got[0].Nome != "Ana" {
		t.Fatalf("list = %+v", got)
	}
}

func TestAddDuplicateIDRejected(t *testing.T) {
	ed, sess, notif := newEditor(t)
	seedProfessor(t, ed, "T9", "Ana")

	body, _ := json.Marshal(models.Professor{ID: "T9", Nome: "Outro"})
	err := ed.Add(context.Background(), ColProfessores, body)
	var verr *apperrors.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	sess.ViewConfig(func(cfg *models.Config) {
		if len(cfg.Professores) != 1 {
			t.Fatalf("professores = %d, want 1 after rejected add", len(cfg.Professores))
		}
	})
	if notif.count() != 1 {
		t.Fatalf("rejected add must not schedule a save, notifies = %d", notif.count())
	}
}

func TestAddDuplicateIDCaseInsensitive(t *testing.T) {
	ed, _, _ := newEditor(t)
	seedProfessor(t, ed, "T9", "Ana")

	body, _ := json.Marshal(models.Professor{ID: "t9"})
	var verr *apperrors.ValidationError
	if err := ed.Add(context.Background(), ColProfessores, body); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestAddMissingIDRejected(t *testing.T) {
	ed, _, _ := newEditor(t)
	var verr *apperrors.ValidationError
	if err := ed.Add(context.Background(), ColAlunos, []byte(`{"nome":"Rui"}`)); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestUpdateInPlaceKeepsOrder(t *testing.T) {
	ed, sess, _ := newEditor(t)
	seedProfessor(t, ed, "T1", "Ana")
	seedProfessor(t, ed, "T2", "Bruno")
	seedProfessor(t, ed, "T3", "Carla")

	body, _ := json.Marshal(models.Professor{Nome: "Bruno Novo", Email: "bruno@esparedes.pt"})
	if err := ed.Update(context.Background(), ColProfessores, "T2", body); err != nil {
		t.Fatal(err)
	}

	sess.ViewConfig(func(cfg *models.Config) {
		ids := []string{cfg.Professores[0].ID, cfg.Professores[1].ID, cfg.Professores[2].ID}
		if !reflect.DeepEqual(ids, []string{"T1", "T2", "T3"}) {
			t.Fatalf("order changed: %v", ids)
		}
		if cfg.Professores[1].Nome != "Bruno Novo" || cfg.Professores[1].Email != "bruno@esparedes.pt" {
			t.Fatalf("update not applied: %+v", cfg.Professores[1])
		}
	})
}

func TestUpdateUnknownID(t *testing.T) {
	ed, _, _ := newEditor(t)
	body, _ := json.Marshal(models.Professor{Nome: "x"})
	if err := ed.Update(context.Background(), ColProfessores, "T404", body); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ed, sess, _ := newEditor(t)
	seedProfessor(t, ed, "T1", "Ana")
	seedProfessor(t, ed, "T2", "Bruno")

	if err := ed.Delete(context.Background(), ColProfessores, "T1"); err != nil {
		t.Fatal(err)
	}
	sess.ViewConfig(func(cfg *models.Config) {
		if len(cfg.Professores) != 1 || cfg.Professores[0].ID != "T2" {
			t.Fatalf("professores = %+v", cfg.Professores)
		}
	})

	if err := ed.Delete(context.Background(), ColProfessores, "T404"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUnknownCollection(t *testing.T) {
	ed, _, _ := newEditor(t)
	if _, err := ed.List("salas"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := ed.Add(context.Background(), "salas", []byte(`{"id":"S1"}`)); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCalendarioRoundTrip(t *testing.T) {
	ed, _, _ := newEditor(t)

	if got := string(ed.Calendario()); got != "{}" {
		t.Fatalf("default calendario = %s, want {}", got)
	}

	cal := []byte(`{"2026-03-02":["G1","G2"]}`)
	if err := ed.ReplaceCalendario(context.Background(), cal); err != nil {
		t.Fatal(err)
	}
	if got := string(ed.Calendario()); got != string(cal) {
		t.Fatalf("calendario = %s, want %s", got, cal)
	}

	var verr *apperrors.ValidationError
	if err := ed.ReplaceCalendario(context.Background(), []byte(`{broken`)); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestReplaceConfigRoundTrip(t *testing.T) {
	ed, sess, _ := newEditor(t)
	seedProfessor(t, ed, "T1", "Ana")

	// export, mutate the export, import it back, export again
	exported := sess.ConfigJSON()
	var doc models.Config
	if err := json.Unmarshal(exported, &doc); err != nil {
		t.Fatal(err)
	}
	doc.Disciplinas = append(doc.Disciplinas, models.Disciplina{ID: "D1", Nome: "Matematica"})
	edited, _ := json.Marshal(doc)

	if err := ed.ReplaceConfig(context.Background(), edited); err != nil {
		t.Fatal(err)
	}

	var got models.Config
	if err := json.Unmarshal(sess.ConfigJSON(), &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, doc)
	}

	var verr *apperrors.ValidationError
	if err := ed.ReplaceConfig(context.Background(), []byte(`"not a document"`)); !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestReplaceProfessores(t *testing.T) {
	ed, sess, _ := newEditor(t)
	seedProfessor(t, ed, "T1", "Ana")

	next := []models.Professor{{ID: "P10", Nome: "Rita"}, {ID: "P11", Nome: "Vasco"}}
	if err := ed.ReplaceProfessores(context.Background(), next); err != nil {
		t.Fatal(err)
	}
	sess.ViewConfig(func(cfg *models.Config) {
		if !reflect.DeepEqual(cfg.Professores, next) {
			t.Fatalf("professores = %+v, want %+v", cfg.Professores, next)
		}
	})
}
