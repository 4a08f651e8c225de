package schedule

// TypeInfo is one entry of the schedule type catalog: a stable code, a
// display name per label set, and a display color.
type TypeInfo struct {
	Code   TypeCode
	NameJA string
	NameKO string
	Color  string // hex, e.g. "#FF6B6B"
}

// FallbackColor is used for type codes the catalog does not know.
const FallbackColor = "#999999"

// catalog is the closed set of event types, in form display order.
var catalog = []TypeInfo{
	{Code: TypeESSubmit, NameJA: "ES提出", NameKO: "ES 제출", Color: "#FF6B6B"},
	{Code: TypeSPITest, NameJA: "SPI試験", NameKO: "SPI 테스트", Color: "#4ECDC4"},
	{Code: TypeInterview1, NameJA: "一次面接", NameKO: "1차 면접", Color: "#45B7D1"},
	{Code: TypeInterview2, NameJA: "二次面接", NameKO: "2차 면접", Color: "#96CEB4"},
	{Code: TypeInterview3, NameJA: "三次面接", NameKO: "3차 면접", Color: "#FFEAA7"},
	{Code: TypeFinalInterview, NameJA: "最終面接", NameKO: "최종 면접", Color: "#DDA15E"},
	{Code: TypeExplanation, NameJA: "会社説明会", NameKO: "회사 설명회", Color: "#C9ADA7"},
	{Code: TypeInternship, NameJA: "インターン", NameKO: "인턴십", Color: "#B4A7D6"},
	{Code: TypeOther, NameJA: "その他", NameKO: "기타", Color: "#90A4AE"},
}

// Name returns the display name for the given label set.
func (t TypeInfo) Name(loc Locale) string {
	if loc == LocaleKO {
		return t.NameKO
	}
	return t.NameJA
}

// Types returns the full catalog in display order. The returned slice must
// not be modified.
func Types() []TypeInfo {
	return catalog
}

// TypeByCode looks up catalog metadata for a code. Unknown codes come from
// store data, so the lookup never fails: it returns a nameless entry with
// the fallback color and ok=false.
func TypeByCode(code TypeCode) (TypeInfo, bool) {
	for _, t := range catalog {
		if t.Code == code {
			return t, true
		}
	}
	return TypeInfo{Code: code, Color: FallbackColor}, false
}
