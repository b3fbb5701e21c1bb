// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeTitle brings an article title into NFC form so that the same
// title aggregates into one series no matter how a given day's listing
// composed its Unicode.
func normalizeTitle(title string) string {
	return norm.NFC.String(title)
}

// displayTitle turns an API article title into its human-readable form.
// The API uses underscores where the rendered title has spaces.
func displayTitle(title string) string {
	return strings.ReplaceAll(title, "_", " ")
}

// humanFormat renders a count like 1234567 as "1.23M".
func humanFormat(num float64) string {
	units := []string{"", "K", "M", "B", "T"}
	magnitude := 0
	for (num >= 1000 || num <= -1000) && magnitude < len(units)-1 {
		magnitude++
		num /= 1000.0
	}
	return fmt.Sprintf("%.2f%s", num, units[magnitude])
}
