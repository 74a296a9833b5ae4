// Package export produces attendee sheets for event organizers.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eventflow/backend/internal/models"
)

// SheetName is the worksheet holding the attendee list.
const SheetName = "Participants"

// ContentType is the MIME type of XLSX workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ParticipantsXLSX builds a workbook with one row per participant and one column per form field.
// Entry tokens are left out; the sheet is meant to be shared.
func ParticipantsXLSX(ev *models.Event, participants []models.Participant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	header := []interface{}{"Name", "Email"}
	if ev.IsTeam() {
		header = append(header, "Team")
	}
	header = append(header, "Status", "Registered At", "Checked In At")
	for _, field := range ev.FormFields {
		header = append(header, field.Label)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, p := range participants {
		row := make([]interface{}, 0, len(header))
		row = append(row, p.Name, p.Email)
		if ev.IsTeam() {
			row = append(row, p.TeamName)
		}
		row = append(row, string(p.CheckInStatus), formatTime(&p.RegisteredAt), formatTime(p.CheckedInAt))
		for _, field := range ev.FormFields {
			row = append(row, cellValue(p.FormData[field.ID]))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func cellValue(v interface{}) interface{} {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string, float64, int:
		return x
	default:
		return fmt.Sprint(x)
	}
}
