// Package export turns lead lists into CSV downloads and spreadsheet
// rows, and reads lead lists back out of spreadsheets.
package export

import (
	"bytes"
	"encoding/csv"

	"github.com/use-agent/leadforge/models"
)

// CSVHeader is the column order for CSV downloads.
var CSVHeader = []string{"Name", "Phone", "Email", "Website", "Address"}

// WriteCSV renders leads as a CSV document with a header row.
func WriteCSV(leads []models.Lead) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, models.NewAPIError(models.ErrCodeExport, "csv header write failed", err)
	}
	for _, lead := range leads {
		record := []string{lead.Name, lead.Phone, lead.Email, lead.Website, lead.Address}
		if err := w.Write(record); err != nil {
			return nil, models.NewAPIError(models.ErrCodeExport, "csv row write failed", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, models.NewAPIError(models.ErrCodeExport, "csv flush failed", err)
	}
	return buf.Bytes(), nil
}
