// Package roster maps tabular teacher files to and from the configuration
// document's teacher list.
package roster

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bibliotecaesparedes/esp-painel-server/internal/apperrors"
	"github.com/bibliotecaesparedes/esp-painel-server/internal/models"
)

// Accepted header spellings, first match wins. The original sheets came from
// several hands, hence the case variants.
var (
	idHeaders    = []string{"id", "codigo", "Codigo"}
	nomeHeaders  = []string{"nome", "Nome", "NOME"}
	emailHeaders = []string{"email", "Email", "EMAIL"}
)

// ParseProfessores reads the first sheet of an XLSX workbook into a teacher
// list. Rows without an id are skipped.
func ParseProfessores(r io.Reader) ([]models.Professor, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("unreadable XLSX file")
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return []models.Professor{}, nil
	}

	header := rows[0]
	idCol := findColumn(header, idHeaders)
	nomeCol := findColumn(header, nomeHeaders)
	emailCol := findColumn(header, emailHeaders)
	if idCol < 0 {
		return nil, apperrors.NewValidationError("no id/codigo column found")
	}

	profs := make([]models.Professor, 0, len(rows)-1)
	for _, row := range rows[1:] {
		p := models.Professor{
			ID:    cell(row, idCol),
			Nome:  cell(row, nomeCol),
			Email: cell(row, emailCol),
		}
		if p.ID == "" {
			continue
		}
		profs = append(profs, p)
	}
	return profs, nil
}

// ExportProfessores writes the teacher list as a one-sheet workbook with a
// bold, filterable header row.
func ExportProfessores(profs []models.Professor) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Professores"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []string{"id", "nome", "email"}
	for col, h := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	bold, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheet, "A1", "C1", bold)
	_ = f.AutoFilter(sheet, "A1:C1", nil)

	for r, p := range profs {
		for c, val := range []string{p.ID, p.Nome, p.Email} {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}
	return f, nil
}

func findColumn(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
