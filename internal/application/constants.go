package application

const (
	// Link codes are six digit numbers in [minCode, minCode+codeSpace)
	minCode         = 100000
	codeSpace       = 900000
	maxCodeAttempts = 1000

	defaultLinkSection = "accounts"

	// Excel export
	excelSheetName   = "Links"
	excelHeaderColor = "5865F2"
)
