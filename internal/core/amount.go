// Package core provides the canonical donation types and amount handling.
//
// This file contains the tolerant number decoding used at the load boundary
// and the display formatting used by logs and exports.
package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// FlexNumber decodes a JSON value that may be a number, a numeric string, an
// empty string, null, or absent. Decoding never fails: anything that cannot be
// read as a number yields Value 0 with Valid false, so one bad field cannot
// abort ingestion of the rest of the array.
//
// Examples:
//
//	10      -> {10, true}
//	"10.5"  -> {10.5, true}
//	""      -> {0, false}
//	"n/a"   -> {0, false}
//	null    -> {0, false}
type FlexNumber struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler. It intentionally swallows
// conversion failures instead of returning an error.
func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	n.Value = 0
	n.Valid = false

	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
		if s == "" {
			return nil
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	n.Value = v
	n.Valid = true
	return nil
}

// MarshalJSON re-encodes the number; invalid values serialize as null.
func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(n.Value, 'f', -1, 64)), nil
}

// AmountOrZero applies the cleaning policy for amounts: unparseable or missing
// values fold to 0, which the cleaner then filters out.
func (n FlexNumber) AmountOrZero() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

// FormatCurrency renders an amount as a thousands-grouped currency string with
// two decimals and a euro suffix (e.g. "12 345.67€"). Used only for human
// facing text such as logs and spreadsheet exports; the JSON contract carries
// plain numbers.
func FormatCurrency(amount float64) string {
	s := fmt.Sprintf("%.2f", amount)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := b.String() + "." + frac + "€"
	if neg {
		return "-" + out
	}
	return out
}

// FormatEdge renders a histogram bin edge without trailing zeros ("5", "0.5").
func FormatEdge(edge float64) string {
	return strconv.FormatFloat(edge, 'f', -1, 64)
}
