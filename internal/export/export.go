// Package export renders the program catalog as CSV, XLSX and plain-text
// briefs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/MrSnakeDoc/launchpad/internal/domain"
)

const (
	CSVFileName  = "startup-programs-verified.csv"
	XLSXFileName = "startup-programs-verified.xlsx"

	sheetName = "Programs"
	listSep   = "; "
)

// Writer renders programs in one export format.
type Writer func(w io.Writer, programs []*domain.Program) error

// Header is the column order shared by every tabular export.
var Header = []string{
	"Name",
	"Provider",
	"Type",
	"Categories",
	"Stages",
	"Apply URL",
	"Source URL",
	"Final URL",
	"What you get",
	"Eligibility",
	"How to apply",
	"Link Status",
	"HTTP Status",
	"Last Verified",
}

// Row flattens a program into Header order.
func Row(p *domain.Program) []string {
	httpStatus := ""
	if p.HTTPStatus != 0 {
		httpStatus = strconv.Itoa(p.HTTPStatus)
	}
	return []string{
		p.Name,
		p.Provider,
		p.OfferType,
		strings.Join(p.Category, listSep),
		strings.Join(p.Stage, listSep),
		p.ApplyURL,
		p.SourceURL,
		p.FinalURL,
		p.WhatYouGet,
		p.Eligibility,
		p.HowToApply,
		string(p.LinkStatus),
		httpStatus,
		p.LastVerified,
	}
}

// WriteCSV writes an RFC 4180 document with a header row.
func WriteCSV(w io.Writer, programs []*domain.Program) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range programs {
		if err := cw.Write(Row(p)); err != nil {
			return fmt.Errorf("write csv row %s: %w", p.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the same rows as WriteCSV into a single-sheet workbook.
func WriteXLSX(w io.Writer, programs []*domain.Program) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := setRow(f, 1, Header); err != nil {
		return err
	}
	for i, p := range programs {
		if err := setRow(f, i+2, Row(p)); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("set %s: %w", cell, err)
		}
	}
	return nil
}

// ─────────────────────────────
// Brief
// ─────────────────────────────

// Brief renders "Label: value" blocks separated by blank lines, skipping
// empty values.
func Brief(p *domain.Program) string {
	lines := []struct{ label, value string }{
		{"Program", p.Name},
		{"Provider", p.Provider},
		{"Type", p.OfferType},
		{"Categories", strings.Join(p.Category, ", ")},
		{"Stage", strings.Join(p.Stage, ", ")},
		{"What you get", p.WhatYouGet},
		{"Eligibility", p.Eligibility},
		{"How to apply", p.HowToApply},
		{"Apply URL", p.ApplyURL},
		{"Source URL", p.SourceURL},
		{"Final URL", p.FinalURL},
		{"Link status", string(p.LinkStatus)},
		{"Last verified", p.LastVerified},
	}

	blocks := make([]string, 0, len(lines))
	for _, l := range lines {
		if v := strings.TrimSpace(l.value); v != "" {
			blocks = append(blocks, l.label+": "+v)
		}
	}
	return strings.Join(blocks, "\n\n")
}

// BriefFileName is "<slug>-brief.txt".
func BriefFileName(p *domain.Program) string {
	return domain.Slugify(p.Name) + "-brief.txt"
}
