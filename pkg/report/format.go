package report

import (
	"fmt"

	"github.com/matzehuels/codescope/pkg/bundle"
)

const unknown = "unknown"

func sizeText(v *int64) string {
	if v == nil {
		return unknown
	}
	return bundle.FormatSize(*v)
}

func percentText(v *float64) string {
	if v == nil {
		return unknown
	}
	return fmt.Sprintf("%.1f%%", *v*100)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
