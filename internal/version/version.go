// ABOUTME: Version information for the composer
// ABOUTME: Reported by the CLI and shown in the TUI header
package version

const (
	// Version is the release version
	Version = "0.1.0"

	// Product is the product name
	Product = "Resonate Composer"

	// Manufacturer identifies who builds it
	Manufacturer = "Resonate"
)
