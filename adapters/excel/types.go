package excel

// RawData is a sheet or CSV file as read, before coercion
type RawData struct {
	Headers []string   // Column headers
	Rows    [][]string // Data rows, aligned with Headers
}
