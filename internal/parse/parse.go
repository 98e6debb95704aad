// Package parse implements the expense message grammar:
//
//	<monto> [categoria] [descripcion] [fecha] [@etiqueta...]
//
// Tags and the date may appear anywhere in the text; they are stripped
// before the positional tokens are read. Parsing is pure: resolution of
// category and tag references against storage happens in the services.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "gastobot/internal/errors"
)

// Draft is the parsed form of an expense message before any reference
// resolution. A zero Date means no explicit date was present. Decimal
// reports whether the amount carried a decimal separator, which the ledger
// uses to classify the currency.
type Draft struct {
	Amount      float64
	Decimal     bool
	CategoryRef string
	Description string
	Date        time.Time
	Tags        []string
}

var (
	tagPattern = regexp.MustCompile(`@(\S+)`)

	// Day-first, the year optional. Only YYYY and YY are accepted; the year
	// group captures up to four digits so an odd-length year invalidates the
	// whole token instead of truncating it.
	datePattern = regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})(?:[/-](\d{1,4}))?\b`)
)

// Message parses a normalized expense message. now anchors the year of
// year-less dates; the caller supplies the processing timestamp.
func Message(text string, now time.Time) (*Draft, error) {
	body := strings.ToLower(strings.TrimSpace(text))
	if body == "" {
		return nil, apperrors.WithMessage(apperrors.ErrParse, "El mensaje está vacío.")
	}

	body, tags := splitTags(body)
	body, date := extractDate(body, now)

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrParse, "Falta el monto del gasto.")
	}

	amount, decimal, err := parseAmount(fields[0])
	if err != nil {
		return nil, err
	}

	draft := &Draft{
		Amount:  amount,
		Decimal: decimal,
		Date:    date,
		Tags:    tags,
	}
	if len(fields) > 1 {
		draft.CategoryRef = fields[1]
	}
	if len(fields) > 2 {
		draft.Description = strings.Join(fields[2:], " ")
	} else {
		draft.Description = "No description"
	}
	return draft, nil
}

// splitTags removes every @tag token from the text and returns the
// remaining body plus the tag names in order of appearance. Duplicates are
// kept; the tag store deduplicates on resolution.
func splitTags(text string) (string, []string) {
	matches := tagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return text, nil
	}
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, m[1])
	}
	body := strings.TrimSpace(tagPattern.ReplaceAllString(text, ""))
	return body, tags
}

// extractDate scans for the first date-looking substring, day first. An
// invalid token (month 13, day 32, a 1- or 3-digit year) is a non-match and
// the text stays untouched. Returns the body without the matched substring
// and the extracted date at 12:00, or the zero time. Year-less dates take
// the year from now; 2-digit years are promoted to 2000+.
func extractDate(text string, now time.Time) (string, time.Time) {
	m := datePattern.FindStringSubmatch(text)
	if m == nil {
		return text, time.Time{}
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	year := now.Year()
	switch len(m[3]) {
	case 0:
	case 2:
		year, _ = strconv.Atoi(m[3])
		year += 2000
	case 4:
		year, _ = strconv.Atoi(m[3])
	default:
		return text, time.Time{}
	}

	date, ok := buildDate(year, month, day)
	if !ok {
		return text, time.Time{}
	}
	return removeFirst(text, m[0]), date
}

// buildDate validates the calendar date by round-tripping through
// time.Date, which normalizes overflows (31/02 becomes 02/03).
func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	date := time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC)
	if date.Day() != day || int(date.Month()) != month {
		return time.Time{}, false
	}
	return date, true
}

func removeFirst(text, substr string) string {
	return strings.TrimSpace(strings.Replace(text, substr, "", 1))
}

// parseAmount reads the leading amount token. A comma or dot marks a
// fractional amount; plain integers keep the user's default currency.
func parseAmount(token string) (float64, bool, error) {
	if strings.ContainsAny(token, ",.") {
		normalized := strings.ReplaceAll(token, ",", ".")
		amount, err := strconv.ParseFloat(normalized, 64)
		if err != nil || amount < 0 {
			return 0, false, apperrors.WithMessage(apperrors.ErrParse,
				fmt.Sprintf("No pude interpretar el monto '%s'. Escribe 'ayuda' para ver ejemplos.", token))
		}
		return amount, true, nil
	}
	amount, err := strconv.ParseInt(token, 10, 64)
	if err != nil || amount < 0 {
		return 0, false, apperrors.WithMessage(apperrors.ErrParse,
			fmt.Sprintf("No pude interpretar el monto '%s'. Escribe 'ayuda' para ver ejemplos.", token))
	}
	return float64(amount), false, nil
}
