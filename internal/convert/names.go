package convert

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upperRun   = regexp.MustCompile(`([A-Z]+)`)
	capitalled = regexp.MustCompile(`([A-Z][a-z]+)`)
	separators = regexp.MustCompile(`[^A-Za-z0-9_]+`)
)

// Snakify turns a label or camelCase identifier into snake_case:
// "Order Summary" -> "order_summary", "countDistinctApprox" ->
// "count_distinct_approx", "HTTPRequests" -> "http_requests".
func Snakify(s string) string {
	s = separators.ReplaceAllString(s, " ")
	s = upperRun.ReplaceAllString(s, " $1")
	s = capitalled.ReplaceAllString(s, " $1")
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	return strings.ToLower(strings.Join(words, "_"))
}

// Humanize turns an identifier into a title: "order_items" -> "Order Items".
func Humanize(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}
