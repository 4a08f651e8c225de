package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ktanaka/shucal/internal/schedule"
)

// ErrNoDate is returned when the text contains nothing recognizable as a
// date. Type and company always resolve to something, so this is the only
// way parsing fails.
var ErrNoDate = errors.New("no date found in text")

// Result is a schedule draft extracted from free-form text.
type Result struct {
	Date        time.Time
	Type        schedule.TypeCode
	CompanyName string
}

// now is swapped out by tests via SetNow.
var now = time.Now

// SetNow overrides the clock used for relative dates and past-date
// handling. It returns a restore function for defer.
func SetNow(fn func() time.Time) func() {
	prev := now
	now = fn
	return func() { now = prev }
}

var (
	fullDateRe  = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
	shortDateRe = regexp.MustCompile(`(\d{1,2})[/月](\d{1,2})日?`)
)

// typeKeywords maps each schedule type to the phrases that imply it, in
// match priority order. Specific interview rounds are resolved before this
// table is consulted so that "二次面接" never matches the generic 面接 of an
// earlier entry.
var typeKeywords = []struct {
	code     schedule.TypeCode
	keywords []string
}{
	{schedule.TypeESSubmit, []string{"ES", "エントリーシート", "提出"}},
	{schedule.TypeSPITest, []string{"SPI", "Webテスト", "テスト", "試験"}},
	{schedule.TypeInterview1, []string{"一次", "1次", "初回", "面接"}},
	{schedule.TypeInterview2, []string{"二次", "2次"}},
	{schedule.TypeInterview3, []string{"三次", "3次"}},
	{schedule.TypeFinalInterview, []string{"最終", "ファイナル"}},
	{schedule.TypeExplanation, []string{"説明会", "セミナー"}},
	{schedule.TypeInternship, []string{"インターンシップ", "インターン"}},
}

// Parse extracts a schedule draft from text like "4/15 トヨタ 一次面接".
// It understands M/D, M月D日 and YYYY-MM-DD dates plus 明日, 今日 and 来週.
func Parse(text string) (Result, error) {
	date, ok := extractDate(text)
	if !ok {
		return Result{}, ErrNoDate
	}
	return Result{
		Date:        date,
		Type:        extractType(text),
		CompanyName: extractCompany(text),
	}, nil
}

func extractDate(text string) (time.Time, bool) {
	// Four-digit years first, so "2025/4/15" is never read as month 25.
	if m := fullDateRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, month, day)
	}

	if m := shortDateRe.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		date, ok := makeDate(now().Year(), month, day)
		if !ok {
			return time.Time{}, false
		}
		// A yearless date more than a week in the past means next year.
		if date.Before(now().AddDate(0, 0, -7)) {
			return makeDate(now().Year()+1, month, day)
		}
		return date, true
	}

	today := now()
	midnight := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.Local)
	switch {
	case strings.Contains(text, "明日") || strings.Contains(text, "あした"):
		return midnight.AddDate(0, 0, 1), true
	case strings.Contains(text, "今日") || strings.Contains(text, "きょう"):
		return midnight, true
	case strings.Contains(text, "来週"):
		return midnight.AddDate(0, 0, 7), true
	}

	return time.Time{}, false
}

// makeDate builds a midnight local date and rejects values that do not
// survive normalization, such as 2月31日.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func extractType(text string) schedule.TypeCode {
	// Interview rounds outrank the generic 面接 keyword.
	switch {
	case containsAny(text, "最終", "ファイナル"):
		return schedule.TypeFinalInterview
	case containsAny(text, "三次", "3次"):
		return schedule.TypeInterview3
	case containsAny(text, "二次", "2次"):
		return schedule.TypeInterview2
	case containsAny(text, "一次", "1次"):
		return schedule.TypeInterview1
	}

	for _, entry := range typeKeywords {
		if containsAny(text, entry.keywords...) {
			return entry.code
		}
	}
	return schedule.TypeOther
}

var (
	particleRe   = regexp.MustCompile(`[のがありますですね。、]`)
	relativeRe   = regexp.MustCompile(`明日|あした|今日|きょう|来週`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// extractCompany is what remains of the text once dates, type keywords and
// filler particles are stripped.
func extractCompany(text string) string {
	cleaned := text
	for _, entry := range typeKeywords {
		for _, kw := range entry.keywords {
			cleaned = strings.ReplaceAll(cleaned, kw, "")
		}
	}
	cleaned = fullDateRe.ReplaceAllString(cleaned, "")
	cleaned = shortDateRe.ReplaceAllString(cleaned, "")
	cleaned = relativeRe.ReplaceAllString(cleaned, "")
	cleaned = particleRe.ReplaceAllString(cleaned, " ")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")

	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "未定の会社"
	}
	return cleaned
}

func containsAny(text string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
