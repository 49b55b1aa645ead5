package application

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"
)

type ExportServiceImpl struct {
	registry *LinkRegistry
}

func NewExportServiceImpl(registry *LinkRegistry) *ExportServiceImpl {
	return &ExportServiceImpl{registry: registry}
}

// ExportLinks renders all confirmed links as an xlsx workbook sorted by
// Discord user ID. IDs are written as text since they exceed float precision.
func (s *ExportServiceImpl) ExportLinks() ([]byte, error) {
	links := s.registry.Links()
	userIDs := make([]int64, 0, len(links))
	for userID := range links {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	f := excelize.NewFile()
	defer f.Close()

	sheet := excelSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{excelHeaderColor}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	headers := []string{"Discord ID", "Player UUID"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "B1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "B", 40)

	for i, userID := range userIDs {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), strconv.FormatInt(userID, 10))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), links[userID].String())
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
