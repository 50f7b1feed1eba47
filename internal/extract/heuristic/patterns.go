package heuristic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Match is one candidate found in the search text
type Match struct {
	Value  string // normalized value
	Text   string // text as it appeared
	Offset int    // byte offset in the search text
}

func (m Match) end() int {
	return m.Offset + len(m.Text)
}

var (
	tagPattern = regexp.MustCompile(`<[^>]+>`)

	flightPattern  = regexp.MustCompile(`\b([A-Z]{2,3}) ?(\d{1,4})\b`)
	airportPattern = regexp.MustCompile(`\b[A-Z]{3}\b`)

	isoDatePattern     = regexp.MustCompile(`\b\d{4}[-/.]\d{1,2}[-/.]\d{1,2}\b`)
	numericDatePattern = regexp.MustCompile(`\b\d{1,2}[/.]\d{1,2}[/.](?:\d{4}|\d{2})\b`)
	dayMonthPattern    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})\b`)
	monthDayPattern    = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)

	meridiemTimePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::([0-5]\d))?\s?([ap])\.?m\b\.?`)
	clockTimePattern    = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)

	bookingKeywordPattern = regexp.MustCompile(`\b(?i:booking|confirmation|reservation|pnr|record locator)(?:\s+(?i:reference|ref|code|number|no))?\.?\s*(?:(?i:is)|:|#|-)?\s*([A-Z0-9]{5,8})\b`)
	bareBookingPattern    = regexp.MustCompile(`\b[A-Z0-9]{6}\b`)

	departureLinePattern = regexp.MustCompile(`(?i)\b(?:depart|departing|departure|departs|from|leaves)\b`)
)

// stopwords collide with the airport code pattern
var stopwords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "YOU": true, "ARE": true, "NOT": true,
	"BUT": true, "ALL": true, "ANY": true, "CAN": true, "HAS": true, "WAS": true,
	"ONE": true, "OUR": true, "OUT": true, "DAY": true, "GET": true, "NEW": true,
	"NOW": true, "SEE": true, "TWO": true, "WAY": true, "WHO": true, "ITS": true,
	"USE": true, "VIA": true, "YES": true, "TAX": true, "FEE": true, "VAT": true,
	"PNR": true, "REF": true, "UTC": true, "GMT": true, "BST": true, "CET": true,
	"EST": true, "PST": true, "USD": true, "EUR": true, "GBP": true,
	"JAN": true, "FEB": true, "MAR": true, "APR": true, "MAY": true, "JUN": true,
	"JUL": true, "AUG": true, "SEP": true, "OCT": true, "NOV": true, "DEC": true,
	"MON": true, "TUE": true, "WED": true, "THU": true, "FRI": true, "SAT": true, "SUN": true,
}

// SearchText flattens an email into the text the patterns run over. The
// plain body is preferred; HTML falls back to a single tag-stripping pass.
func SearchText(subject, plain, html string) string {
	body := plain
	if strings.TrimSpace(body) == "" {
		body = tagPattern.ReplaceAllString(html, " ")
	}
	return subject + "\n" + body
}

func findFlights(text string, exclude []Match) []Match {
	var out []Match
	for _, loc := range flightPattern.FindAllStringSubmatchIndex(text, -1) {
		carrier := text[loc[2]:loc[3]]
		if stopwords[carrier] {
			continue
		}
		// "JFK 2025-01-11" is a code followed by a date, not a flight
		if loc[1] < len(text) && strings.ContainsRune("-/.:", rune(text[loc[1]])) &&
			loc[1]+1 < len(text) && text[loc[1]+1] >= '0' && text[loc[1]+1] <= '9' {
			continue
		}
		m := Match{
			Value:  carrier + text[loc[4]:loc[5]],
			Text:   text[loc[0]:loc[1]],
			Offset: loc[0],
		}
		if overlapsAny(m, exclude) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func findAirports(text string, exclude []Match) []Match {
	var out []Match
	for _, loc := range airportPattern.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		m := Match{Value: code, Text: code, Offset: loc[0]}
		if stopwords[code] || overlapsAny(m, exclude) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func findDates(text string) []Match {
	var out []Match
	add := func(loc []int, value string) {
		m := Match{Value: value, Text: text[loc[0]:loc[1]], Offset: loc[0]}
		if !overlapsAny(m, out) {
			out = append(out, m)
		}
	}

	for _, loc := range dayMonthPattern.FindAllStringSubmatchIndex(text, -1) {
		s := fmt.Sprintf("%s %s %s", text[loc[2]:loc[3]], monthName(text[loc[4]:loc[5]]), text[loc[6]:loc[7]])
		if v, ok := normalizeDate(s, "2 Jan 2006"); ok {
			add(loc, v)
		}
	}
	for _, loc := range monthDayPattern.FindAllStringSubmatchIndex(text, -1) {
		s := fmt.Sprintf("%s %s %s", text[loc[4]:loc[5]], monthName(text[loc[2]:loc[3]]), text[loc[6]:loc[7]])
		if v, ok := normalizeDate(s, "2 Jan 2006"); ok {
			add(loc, v)
		}
	}
	for _, loc := range isoDatePattern.FindAllStringIndex(text, -1) {
		if v, ok := normalizeDate(text[loc[0]:loc[1]], "2006-1-2"); ok {
			add(loc, v)
		}
	}
	for _, loc := range numericDatePattern.FindAllStringIndex(text, -1) {
		s := strings.ReplaceAll(text[loc[0]:loc[1]], ".", "/")
		if v, ok := normalizeDate(s, "2/1/2006", "2/1/06"); ok {
			add(loc, v)
		}
	}

	sortByOffset(out)
	return out
}

// normalizeDate tries the exact layouts first, then a fuzzy parse
func normalizeDate(s string, layouts ...string) (string, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func monthName(s string) string {
	s = strings.ToLower(s[:3])
	return strings.ToUpper(s[:1]) + s[1:]
}

func findTimes(text string) []Match {
	var out []Match
	for _, loc := range meridiemTimePattern.FindAllStringSubmatchIndex(text, -1) {
		hour, _ := strconv.Atoi(text[loc[2]:loc[3]])
		if hour < 1 || hour > 12 {
			continue
		}
		minute := 0
		if loc[4] >= 0 {
			minute, _ = strconv.Atoi(text[loc[4]:loc[5]])
		}
		hour %= 12
		if strings.EqualFold(text[loc[6]:loc[7]], "p") {
			hour += 12
		}
		out = append(out, Match{
			Value:  fmt.Sprintf("%02d:%02d", hour, minute),
			Text:   text[loc[0]:loc[1]],
			Offset: loc[0],
		})
	}
	for _, loc := range clockTimePattern.FindAllStringSubmatchIndex(text, -1) {
		hour, _ := strconv.Atoi(text[loc[2]:loc[3]])
		m := Match{
			Value:  fmt.Sprintf("%02d:%s", hour, text[loc[4]:loc[5]]),
			Text:   text[loc[0]:loc[1]],
			Offset: loc[0],
		}
		if !overlapsAny(m, out) {
			out = append(out, m)
		}
	}

	sortByOffset(out)
	return out
}

// findBookingReferences returns keyword-introduced codes, or when there are
// none, bare six-character codes mixing letters and digits.
func findBookingReferences(text string) []Match {
	var out []Match
	for _, loc := range bookingKeywordPattern.FindAllStringSubmatchIndex(text, -1) {
		code := text[loc[2]:loc[3]]
		out = append(out, Match{Value: code, Text: code, Offset: loc[2]})
	}
	if len(out) > 0 {
		return out
	}

	for _, loc := range bareBookingPattern.FindAllStringIndex(text, -1) {
		code := text[loc[0]:loc[1]]
		if !hasLetterAndDigit(code) || flightPattern.MatchString(code) {
			continue
		}
		out = append(out, Match{Value: code, Text: code, Offset: loc[0]})
	}
	return out
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			letter = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return letter && digit
}

func overlapsAny(m Match, others []Match) bool {
	for _, o := range others {
		if m.Offset < o.end() && o.Offset < m.end() {
			return true
		}
	}
	return false
}
