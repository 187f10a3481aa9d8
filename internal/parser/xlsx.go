package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sift-cli/internal/table"
	"github.com/xuri/excelize/v2"
)

type xlsxLoader struct{}

func (xlsxLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

// Load reads the selected sheet. Cells are read raw so percentage-formatted
// cells yield their stored fraction, as spreadsheet readers usually do.
func (xlsxLoader) Load(path string, opt Options) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f.GetSheetList(), opt.Sheet, opt.SheetIndex, path)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	name := tableName(path)
	if len(rows) == 0 {
		return table.New(name, nil, nil), nil
	}
	var body [][]string
	for _, r := range rows[1:] {
		if blank(r) {
			continue
		}
		body = append(body, r)
	}
	return table.New(name, rows[0], body), nil
}

func resolveSheet(sheets []string, name string, index int, path string) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook '%s' has no sheets", filepath.Base(path))
	}
	if name != "" {
		for _, s := range sheets {
			if strings.EqualFold(s, name) {
				return s, nil
			}
		}
		return "", fmt.Errorf("sheet '%s' not found in workbook '%s'.\nAvailable sheets: %s",
			name, filepath.Base(path), strings.Join(sheets, ", "))
	}
	if index <= 0 {
		index = 1
	}
	if index > len(sheets) {
		return "", fmt.Errorf("sheet index %d out of range in workbook '%s' (%d sheets)", index, filepath.Base(path), len(sheets))
	}
	return sheets[index-1], nil
}
