package models

// Workbook represents an opened workbook with its sheets in workbook order.
type Workbook struct {
	// Name is the workbook file name (no path).
	Name string `json:"name"`
	// Sheets lists the worksheets in tab order.
	Sheets []*Sheet `json:"sheets"`
}
