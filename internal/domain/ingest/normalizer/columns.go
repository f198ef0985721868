// Package normalizer cleans raw spreadsheet rows before ledger posting.
// columns.go maps exported report headers onto canonical field names and
// filters artifacts left behind by corrupted multipart or xlsx parses.
package normalizer

import "strings"

// columnAliases renames the clearing report headers to canonical field
// identifiers. Unknown headers pass through with whitespace trimmed.
var columnAliases = map[string]string{
	"Account":               "accountNumber",
	"Type":                  "accountType",
	"Orders":                "orders",
	"Fills":                 "fills",
	"Qty":                   "qty",
	"Start Cash":            "startCash",
	"Start Unrealized":      "startUnrealized",
	"Start Balance":         "startBalance",
	"Trade Fees":            "tradeFees",
	"Net":                   "net",
	"Adj Fees":              "adjFees",
	"Adj Net":               "adjNet",
	"Unrealized Δ":          "unrealizedDelta",
	"Total Δ":               "total",
	"Transfers":             "transfer",
	"End Cash":              "endCash",
	"End Unrealized":        "endUnrealized",
	"End Balance":           "endBalance",
	"Gross":                 "gross",
	"Comm":                  "comm",
	"Ecn Fee":               "ecnFee",
	"SEC":                   "sec",
	"ORF":                   "orf",
	"CAT":                   "cat",
	"TAF":                   "taf",
	"NFA":                   "nfa",
	"NSCC":                  "nscc",
	"Acc":                   "acc",
	"Clr":                   "clr",
	"Misc":                  "misc",
	"Fee: DailyInterest":    "feeDailyInterest",
	"Fee: Dividends":        "feeDividends",
	"Fee: Misc":             "feeMisc",
	"Fee: Short Interest":   "feeShortInterest",
	"Fee: Stock Locate":     "stockLocate",
	"Fee: Technology":       "techFees",
	"Transfer: Cash In/Out": "cashInOut",
}

// emptyHeaderPrefix marks auto-generated names for blank header cells.
const emptyHeaderPrefix = "__EMPTY"

// zipMagic is the start of a zip central directory record; its presence in a
// cell value means the xlsx container bled into the parsed data.
const zipMagic = "PK\x01\x02"

// NormalizeRow cleans one raw row of header -> cell value pairs.
//
// Keys carrying multipart boundary markers, blank-column placeholders, or
// binary content are dropped, as are values with embedded NUL bytes or zip
// magic. Surviving keys are trimmed and renamed through the alias table.
// If a renamed key collides with a passthrough key, the map iteration order
// decides which value survives (last write wins).
func NormalizeRow(row map[string]string) map[string]string {
	clean := make(map[string]string, len(row))
	for key, value := range row {
		if strings.Contains(key, "----") || strings.Contains(key, "boundary") ||
			strings.HasPrefix(key, emptyHeaderPrefix) || strings.Contains(key, "\x00") {
			continue
		}
		if strings.Contains(value, "\x00") || strings.Contains(value, zipMagic) {
			continue
		}

		cleanKey := strings.TrimSpace(key)
		mapped, ok := columnAliases[cleanKey]
		if !ok {
			mapped = cleanKey
		}
		clean[mapped] = strings.TrimSpace(value)
	}
	return clean
}
