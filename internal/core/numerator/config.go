// Package numerator defines voucher numbering contracts.
package numerator

// ResetPeriod controls when a sequence starts again from 1.
type ResetPeriod string

const (
	ResetYearly  ResetPeriod = "year"
	ResetMonthly ResetPeriod = "month"
	ResetNever   ResetPeriod = "never"
)

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INV", "LOB")
	Prefix string

	// IncludeYear adds year to the number
	IncludeYear bool

	// PadWidth is the minimum number width (default 5)
	PadWidth int

	ResetPeriod ResetPeriod
}

// DefaultConfig returns a yearly-reset configuration with 5 digit padding.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: ResetYearly,
	}
}

// Invoice voucher numbering.
var (
	InvoiceVoucher = DefaultConfig("INV")
	LobbyVoucher   = DefaultConfig("LOB")
)
