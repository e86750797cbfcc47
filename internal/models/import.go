package models

// ImportTemplateColumn describes one column of the product import sheet
type ImportTemplateColumn struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"` // string, number, boolean
	Example     string `json:"example"`
}

// ImportTemplate defines the structure of an import template
type ImportTemplate struct {
	Entity  string                 `json:"entity"`
	Version string                 `json:"version"`
	Columns []ImportTemplateColumn `json:"columns"`
}

// ImportRowError represents an error for a specific row
type ImportRowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResult represents the result of an import operation
type ImportResult struct {
	Success      bool             `json:"success"`
	TotalRows    int              `json:"totalRows"`
	SuccessCount int              `json:"successCount"`
	FailedCount  int              `json:"failedCount"`
	Errors       []ImportRowError `json:"errors,omitempty"`
}

// ProductImportColumns returns the column set accepted by the product importer
func ProductImportColumns() []ImportTemplateColumn {
	return []ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Amoxicillin 500mg"},
		{Name: "barcode", Description: "EAN/UPC barcode", Required: false, Type: "string", Example: "6291041500213"},
		{Name: "sku", Description: "Stock keeping unit", Required: false, Type: "string", Example: "AMX-500-CAP"},
		{Name: "scientificName", Description: "Scientific (generic) name", Required: false, Type: "string", Example: "Amoxicillin"},
		{Name: "description", Description: "Free-text description", Required: false, Type: "string", Example: "Broad-spectrum antibiotic"},
		{Name: "cost", Description: "Unit cost in minor currency units", Required: false, Type: "number", Example: "1250"},
		{Name: "sellingPrice", Description: "Unit selling price in minor currency units", Required: false, Type: "number", Example: "1800"},
		{Name: "isDrug", Description: "Whether the product is a drug", Required: false, Type: "boolean", Example: "true"},
		{Name: "controlledSubstance", Description: "Whether the product is a controlled substance", Required: false, Type: "boolean", Example: "false"},
	}
}

// ProductImportTemplate returns the import template definition for products
func ProductImportTemplate() ImportTemplate {
	return ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: ProductImportColumns(),
	}
}
