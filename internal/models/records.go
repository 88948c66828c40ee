package models

// RecordsVersion is the schema tag of the records document.
const RecordsVersion = "v1"

// Registo is one attendance entry. AlunoID is nil when the group carries no
// student roster; HoraInicio/HoraFim are nil when the group defines no times.
type Registo struct {
	ID           string  `json:"id"`
	Data         string  `json:"data"`
	ProfessorID  string  `json:"professorId"`
	AlunoID      *string `json:"alunoId"`
	DisciplinaID string  `json:"disciplinaId"`
	Presenca     bool    `json:"presenca"`
	NumeroLicao  string  `json:"numeroLicao"`
	Sumario      string  `json:"sumario"`
	HoraInicio   *string `json:"horaInicio"`
	HoraFim      *string `json:"horaFim"`
}

// Records is the append-only records document. Nothing in this service edits
// or removes an entry once appended.
type Records struct {
	Versao   string    `json:"versao"`
	Registos []Registo `json:"registos"`
}

func DefaultRecords() *Records {
	return &Records{Versao: RecordsVersion, Registos: []Registo{}}
}
