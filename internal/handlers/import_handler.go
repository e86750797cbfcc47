package handlers

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"pharmacy-inventory-service/internal/models"
	"pharmacy-inventory-service/internal/repository"
)

const exportPageSize = 500

// ImportHandler serves the product import/export endpoints
type ImportHandler struct {
	repo   repository.CatalogRepositoryInterface
	logger *logrus.Logger
}

func NewImportHandler(repo repository.CatalogRepositoryInterface, logger *logrus.Logger) *ImportHandler {
	return &ImportHandler{repo: repo, logger: logger}
}

// GetImportTemplate returns the import template definition or file
// GET /api/v1/products/import/template
func (h *ImportHandler) GetImportTemplate(c *gin.Context) {
	format := c.DefaultQuery("format", "json")

	template := models.ProductImportTemplate()

	switch format {
	case "csv":
		h.generateCSVTemplate(c, template)
	case "xlsx":
		h.generateXLSXTemplate(c, template)
	default:
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"template": template,
		})
	}
}

// generateCSVTemplate generates and downloads a CSV template (headers only)
func (h *ImportHandler) generateCSVTemplate(c *gin.Context, template models.ImportTemplate) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	headers := make([]string, len(template.Columns))
	for i, col := range template.Columns {
		headers[i] = col.Name
	}
	writer.Write(headers)
}

// generateXLSXTemplate generates and downloads an Excel template
func (h *ImportHandler) generateXLSXTemplate(c *gin.Context, template models.ImportTemplate) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range template.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := col.Name
		if col.Required {
			headerText = col.Name + " *"
		}
		f.SetCellValue(sheetName, cell, headerText)

		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	// Instructions sheet with the column definitions
	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")
	f.SetCellValue("Instructions", "A3", "Columns marked with * are required.")
	f.SetCellValue("Instructions", "A4", "cost and sellingPrice are integer amounts in minor currency units (e.g. cents).")

	f.SetCellValue("Instructions", "A6", "Column Definitions:")
	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Required")
	f.SetCellValue("Instructions", "D7", "Type")
	f.SetCellValue("Instructions", "E7", "Example")

	for i, col := range template.Columns {
		row := i + 8
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), col.Name)
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}

	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 15)
	f.SetColWidth("Instructions", "E", "E", 40)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_import_template.xlsx")

	f.Write(c.Writer)
}

// ImportProducts imports products from an uploaded CSV or Excel file.
// Invalid rows are reported per row; valid rows are still imported.
// POST /api/v1/products/import
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "FILE_REQUIRED", "Please upload a CSV or Excel file")
		return
	}
	defer file.Close()

	validateOnly := c.DefaultPostForm("validateOnly", "false") == "true"

	filename := strings.ToLower(header.Filename)
	var rows []map[string]string
	var parseErr error
	switch {
	case strings.HasSuffix(filename, ".csv"):
		rows, parseErr = h.parseCSV(file)
	case strings.HasSuffix(filename, ".xlsx"):
		rows, parseErr = h.parseXLSX(file)
	default:
		respondError(c, http.StatusBadRequest, "INVALID_FORMAT", "Only CSV and XLSX files are supported")
		return
	}

	if parseErr != nil {
		respondError(c, http.StatusBadRequest, "PARSE_ERROR", parseErr.Error())
		return
	}

	if len(rows) == 0 {
		respondError(c, http.StatusBadRequest, "EMPTY_FILE", "The file contains no data rows")
		return
	}

	result := h.processImport(rows, validateOnly)
	c.JSON(http.StatusOK, result)
}

// processImport validates every row, then creates products for the valid ones
func (h *ImportHandler) processImport(rows []map[string]string, validateOnly bool) *models.ImportResult {
	result := &models.ImportResult{
		TotalRows: len(rows),
		Errors:    make([]models.ImportRowError, 0),
	}

	for _, row := range rows {
		rowNum, _ := strconv.Atoi(row["_row"])

		product, ok := h.buildProduct(row, rowNum, result)
		if !ok {
			result.FailedCount++
			continue
		}

		if validateOnly {
			result.SuccessCount++
			continue
		}

		if err := h.repo.CreateProduct(product); err != nil {
			h.logger.WithError(err).WithField("row", rowNum).Error("Failed to import product row")
			result.FailedCount++
			result.Errors = append(result.Errors, models.ImportRowError{
				Row:     rowNum,
				Code:    "CREATION_FAILED",
				Message: err.Error(),
			})
			continue
		}
		result.SuccessCount++
	}

	result.Success = result.SuccessCount > 0
	return result
}

// buildProduct maps a parsed row to a product, recording per-field errors
func (h *ImportHandler) buildProduct(row map[string]string, rowNum int, result *models.ImportResult) (*models.Product, bool) {
	valid := true
	addError := func(column, code, message string) {
		valid = false
		result.Errors = append(result.Errors, models.ImportRowError{
			Row:     rowNum,
			Column:  column,
			Code:    code,
			Message: message,
		})
	}

	name := row["name"]
	if name == "" {
		addError("name", "REQUIRED", "Product name is required")
	} else if len(name) > 40 {
		addError("name", "TOO_LONG", "Product name must be at most 40 characters")
	}

	product := &models.Product{
		Name:           name,
		Barcode:        optionalString(row["barcode"]),
		SKU:            optionalString(row["sku"]),
		ScientificName: optionalString(row["scientificname"]),
		Description:    optionalString(row["description"]),
	}

	if v := row["cost"]; v != "" {
		if num, err := strconv.Atoi(v); err != nil || num < 0 {
			addError("cost", "INVALID", "cost must be a non-negative integer")
		} else {
			product.Cost = &num
		}
	}
	if v := row["sellingprice"]; v != "" {
		if num, err := strconv.Atoi(v); err != nil || num < 0 {
			addError("sellingPrice", "INVALID", "sellingPrice must be a non-negative integer")
		} else {
			product.SellingPrice = &num
		}
	}
	if v := row["isdrug"]; v != "" {
		if parsed, err := strconv.ParseBool(v); err != nil {
			addError("isDrug", "INVALID", "isDrug must be true or false")
		} else {
			product.IsDrug = &parsed
		}
	}
	if v := row["controlledsubstance"]; v != "" {
		if parsed, err := strconv.ParseBool(v); err != nil {
			addError("controlledSubstance", "INVALID", "controlledSubstance must be true or false")
		} else {
			product.ControlledSubstance = &parsed
		}
	}

	return product, valid
}

// ExportProducts downloads the full product catalog as an Excel workbook
// GET /api/v1/products/export
func (h *ImportHandler) ExportProducts(c *gin.Context) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := []string{"id", "name", "barcode", "sku", "scientificName", "description", "cost", "sellingPrice", "isDrug", "controlledSubstance", "createdAt"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	rowIdx := 2
	for page := 0; ; page++ {
		req := models.SearchProductsRequest{Page: page, Size: exportPageSize}
		products, _, err := h.repo.SearchProducts(&req)
		if err != nil {
			h.logger.WithError(err).Error("Failed to export products")
			respondError(c, http.StatusInternalServerError, "FETCH_FAILED", "Failed to export products")
			return
		}
		if len(products) == 0 {
			break
		}

		for _, product := range products {
			values := []interface{}{
				product.ID,
				product.Name,
				derefString(product.Barcode),
				derefString(product.SKU),
				derefString(product.ScientificName),
				derefString(product.Description),
				derefInt(product.Cost),
				derefInt(product.SellingPrice),
				derefBool(product.IsDrug),
				derefBool(product.ControlledSubstance),
				product.CreatedAt.Format("2006-01-02 15:04:05"),
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
				f.SetCellValue(sheetName, cell, value)
			}
			rowIdx++
		}

		if len(products) < exportPageSize {
			break
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=products_export.xlsx")

	f.Write(c.Writer)
}

// parseCSV parses a CSV file into rows keyed by lowercased header
func (h *ImportHandler) parseCSV(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	normalizeHeaders(headers)

	var rows []map[string]string
	lineNum := 1

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading line %d: %w", lineNum+1, err)
		}

		row := make(map[string]string)
		for i, value := range record {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(lineNum + 1)
		rows = append(rows, row)
		lineNum++
	}

	return rows, nil
}

// parseXLSX parses an Excel file into rows keyed by lowercased header
func (h *ImportHandler) parseXLSX(file io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	sheetName := sheets[0]
	for _, name := range sheets {
		if strings.EqualFold(name, "Products") {
			sheetName = name
			break
		}
	}

	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	headers := excelRows[0]
	normalizeHeaders(headers)

	var rows []map[string]string
	for rowIdx, excelRow := range excelRows[1:] {
		row := make(map[string]string)
		for i, value := range excelRow {
			if i < len(headers) {
				row[headers[i]] = strings.TrimSpace(value)
			}
		}
		row["_row"] = strconv.Itoa(rowIdx + 2)
		rows = append(rows, row)
	}

	return rows, nil
}

// normalizeHeaders lowercases headers and strips the required marker
func normalizeHeaders(headers []string) {
	for i := range headers {
		headers[i] = strings.TrimSpace(strings.ToLower(headers[i]))
		headers[i] = strings.TrimSuffix(headers[i], " *")
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefInt(value *int) interface{} {
	if value == nil {
		return ""
	}
	return *value
}

func derefBool(value *bool) interface{} {
	if value == nil {
		return ""
	}
	return *value
}
