package bundle

import "github.com/dustin/go-humanize"

// FormatSize renders a byte count with IEC units ("1.0 KiB", "300 KiB").
// Negative counts render as zero.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(max(bytes, 0)))
}
