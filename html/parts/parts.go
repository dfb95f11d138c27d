package parts

import (
	_ "embed"
)

//go:embed critical.css
var criticalCSS string

// GetCriticalCSS returns the inline stylesheet shared by the listing pages.
func GetCriticalCSS() string {
	return criticalCSS
}
