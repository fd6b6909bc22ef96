package handlers

import (
	"bytes"
	"net/http"

	"github.com/MrSnakeDoc/launchpad/internal/export"
	"github.com/MrSnakeDoc/launchpad/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchpad/internal/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportCSV streams the catalog as CSV.
func ExportCSV(d deps.Deps) http.HandlerFunc {
	return exportHandler(d, "text/csv; charset=utf-8", export.CSVFileName, export.WriteCSV)
}

// ExportXLSX streams the catalog as a spreadsheet.
func ExportXLSX(d deps.Deps) http.HandlerFunc {
	return exportHandler(d, xlsxContentType, export.XLSXFileName, export.WriteXLSX)
}

// exportHandler renders into a buffer first so a failure can still become a
// 500 instead of a truncated download.
func exportHandler(d deps.Deps, contentType, filename string, write export.Writer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := write(&buf, d.Catalog.All()); err != nil {
			d.Logger.Error("export failed",
				logger.String("file", filename),
				logger.Error(err))
			writeError(w, http.StatusInternalServerError, "Export failed", d.Logger)
			return
		}
		attachment(w, contentType, filename)
		if _, err := buf.WriteTo(w); err != nil {
			d.Logger.Debug("failed to write export", logger.Error(err))
		}
	}
}
