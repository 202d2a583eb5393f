package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXlsx renders every sheet of a workbook as a markdown-style table.
// Tables keep rows together, which chunking on paragraph boundaries then
// preserves reasonably well.
func extractXlsx(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", &Error{
			Kind:    ExtractionError,
			Message: "failed to extract text from workbook",
			Err:     err,
		}
	}
	defer f.Close()

	var sheets []string
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue
		}

		var sb strings.Builder
		sb.WriteString("## " + sheetName + "\n")
		sb.WriteString("| " + strings.Join(rows[0], " | ") + " |\n")
		sb.WriteString("|" + strings.Repeat(" --- |", len(rows[0])) + "\n")
		for _, row := range rows[1:] {
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}
		sheets = append(sheets, sb.String())
	}

	return strings.Join(sheets, "\n\n"), nil
}
