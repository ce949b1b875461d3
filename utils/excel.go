package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/microaistudio/hptourism-r1-sub000/db/models"

	"github.com/xuri/excelize/v2"
)

// EnsureDirectoryExists ensures the specified directory exists before file saving
func EnsureDirectoryExists(filePath string) error {
	dir := filepath.Dir(filePath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			return fmt.Errorf("error creating directory: %v", err)
		}
	}
	return nil
}

var applicationExportHeaders = []string{
	"Application Number", "Owner", "District", "Category", "Location Type",
	"Total Rooms", "Status", "Stage", "Total Fee", "Submitted At", "Certificate Number",
}

// GenerateApplicationsExcel writes the given applications into an Excel
// workbook under ./public/files and returns the file path.
func GenerateApplicationsExcel(applications []models.Application) (string, error) {
	dirPath := "./public/files"
	if err := EnsureDirectoryExists(filepath.Join(dirPath, "placeholder")); err != nil {
		return "", fmt.Errorf("failed to ensure directory exists: %v", err)
	}

	f := excelize.NewFile()
	sheetName := "Applications"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for col, header := range applicationExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("error resolving header cell: %v", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return "", fmt.Errorf("error setting header %s: %v", header, err)
		}
	}

	for row, app := range applications {
		totalFee := ""
		if app.TotalFee != nil {
			totalFee = app.TotalFee.StringFixed(2)
		}
		submittedAt := ""
		if app.SubmittedAt != nil {
			submittedAt = app.SubmittedAt.Format("2006-01-02 15:04")
		}
		certificate := ""
		if app.CertificateNumber != nil {
			certificate = *app.CertificateNumber
		}

		values := []interface{}{
			app.ApplicationNumber,
			fmt.Sprintf("%s %s", app.Owner.FirstName, app.Owner.LastName),
			app.District,
			string(app.Category),
			string(app.LocationType),
			app.TotalRooms,
			string(app.Status),
			string(app.CurrentStage),
			totalFee,
			submittedAt,
			certificate,
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return "", fmt.Errorf("error resolving cell: %v", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return "", fmt.Errorf("error writing row %d: %v", row+2, err)
			}
		}
	}

	fileName := fmt.Sprintf("applications_%s.xlsx", time.Now().Format("20060102_150405"))
	filePath := filepath.Join(dirPath, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving excel file: %v", err)
	}

	return filePath, nil
}
