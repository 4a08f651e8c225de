package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/ktanaka/shucal/internal/schedule"
)

const (
	cellWidth  = 14
	cellHeight = 4
	modalWidth = 44
)

// Styles holds the lipgloss styles for the calendar and modal. They are
// built once per model; colors for schedule markers come from the type
// catalog, not from here.
type Styles struct {
	Header     lipgloss.Style
	Weekday    lipgloss.Style
	Sunday     lipgloss.Style
	Saturday   lipgloss.Style
	Cell       lipgloss.Style
	CellOut    lipgloss.Style
	Selected   lipgloss.Style
	Today      lipgloss.Style
	Modal      lipgloss.Style
	ModalTitle lipgloss.Style
	Label      lipgloss.Style
	Focused    lipgloss.Style
	Status     lipgloss.Style
	Help       lipgloss.Style
}

func DefaultStyles() Styles {
	border := lipgloss.RoundedBorder()
	return Styles{
		Header:     lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Weekday:    lipgloss.NewStyle().Bold(true).Width(cellWidth + 2).Align(lipgloss.Center),
		Sunday:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		Saturday:   lipgloss.NewStyle().Foreground(lipgloss.Color("#45B7D1")),
		Cell:       lipgloss.NewStyle().Width(cellWidth).Height(cellHeight).Border(lipgloss.NormalBorder(), true).BorderForeground(lipgloss.Color("240")),
		CellOut:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Selected:   lipgloss.NewStyle().Width(cellWidth).Height(cellHeight).Border(lipgloss.ThickBorder(), true).BorderForeground(lipgloss.Color("212")),
		Today:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Modal:      lipgloss.NewStyle().Border(border, true).BorderForeground(lipgloss.Color("62")).Padding(1, 2).Width(modalWidth),
		ModalTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62")),
		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Focused:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Status:     lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		Help:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

var weekdayLabels = map[schedule.Locale][]string{
	schedule.LocaleJA: {"日", "月", "火", "水", "木", "金", "土"},
	schedule.LocaleKO: {"일", "월", "화", "수", "목", "금", "토"},
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(m.gridView())
	b.WriteString("\n")

	switch m.modal.Mode {
	case ModalList:
		b.WriteString(m.listView())
		b.WriteString("\n")
	case ModalCreate:
		b.WriteString(m.formView())
		b.WriteString("\n")
	}

	b.WriteString(m.statusView())
	return b.String()
}

func (m *Model) headerView() string {
	var title string
	if m.locale == schedule.LocaleKO {
		title = fmt.Sprintf("%d년 %d월", m.year, int(m.month))
	} else {
		title = fmt.Sprintf("%d年 %d月", m.year, int(m.month))
	}
	if m.loading {
		title += " …"
	}
	return m.styles.Header.Render(title)
}

func (m *Model) gridView() string {
	labels := weekdayLabels[m.locale]
	if labels == nil {
		labels = weekdayLabels[schedule.LocaleJA]
	}

	headings := make([]string, 7)
	for i, l := range labels {
		s := m.styles.Weekday
		switch i {
		case 0:
			s = s.Inherit(m.styles.Sunday)
		case 6:
			s = s.Inherit(m.styles.Saturday)
		}
		headings[i] = s.Render(l)
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, headings...)}

	cells := m.Cells()
	for week := 0; week < schedule.GridSize/7; week++ {
		rendered := make([]string, 7)
		for day := 0; day < 7; day++ {
			rendered[day] = m.cellView(cells[week*7+day])
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) cellView(c schedule.Cell) string {
	now := time.Now()

	num := fmt.Sprintf("%d", c.Date.Day())
	switch {
	case !c.InMonth:
		num = m.styles.CellOut.Render(num)
	case c.Date.Year() == now.Year() && c.Date.Month() == now.Month() && c.Date.Day() == now.Day():
		num = m.styles.Today.Render(num)
	}

	lines := []string{num}
	const maxMarkers = cellHeight - 1
	for i, rec := range c.Records {
		if i == maxMarkers {
			lines[len(lines)-1] = m.styles.CellOut.Render(fmt.Sprintf("+%d件", len(c.Records)-maxMarkers+1))
			break
		}
		info, _ := schedule.TypeByCode(rec.Type)
		marker := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render("●")
		lines = append(lines, marker+" "+truncate(rec.CompanyName, cellWidth-3))
	}

	style := m.styles.Cell
	if sameDay(c.Date, m.selected) {
		style = m.styles.Selected
	}
	return style.Render(strings.Join(lines, "\n"))
}

// listView renders the day-detail modal's schedule list.
func (m *Model) listView() string {
	var b strings.Builder
	b.WriteString(m.styles.ModalTitle.Render(m.dateTitle(m.modal.Date)))
	b.WriteString("\n\n")

	records := m.index.ForKey(schedule.DateKey(m.modal.Date))
	if len(records) == 0 {
		if m.locale == schedule.LocaleKO {
			b.WriteString(m.styles.Label.Render("일정이 없습니다"))
		} else {
			b.WriteString(m.styles.Label.Render("予定はありません"))
		}
		b.WriteString("\n")
	}
	for _, rec := range records {
		info, _ := schedule.TypeByCode(rec.Type)
		name := info.Name(m.locale)
		if name == "" {
			name = string(rec.Type)
		}
		tag := lipgloss.NewStyle().Foreground(lipgloss.Color(info.Color)).Render("● " + name)
		b.WriteString(tag + "  " + rec.CompanyName)
		if rec.Timed() {
			b.WriteString("  ⏰ " + rec.Time)
		}
		b.WriteString("\n")
		if rec.Location != "" {
			b.WriteString(m.styles.Label.Render("  📍 "+rec.Location) + "\n")
		}
		if rec.Memo != "" {
			memo := wordwrap.String(rec.Memo, modalWidth-8)
			b.WriteString(m.styles.Label.Render(indent(memo, "  ")) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("n: 新規  esc: 閉じる"))
	return m.styles.Modal.Render(b.String())
}

// formView renders the create form with the focused field highlighted.
func (m *Model) formView() string {
	d := m.modal.Draft
	info, _ := schedule.TypeByCode(d.TypeCode)

	timeValue := d.Time()
	if timeValue == "" {
		timeValue = "--:--"
	}

	rows := []struct {
		field formField
		label string
		value string
	}{
		{fieldType, "種類", "◀ " + info.Name(m.locale) + " ▶"},
		{fieldCompany, "企業名", d.CompanyName + "_"},
		{fieldHour, "時", orDash(d.Hour)},
		{fieldMinute, "分", orDash(d.Minute)},
		{fieldLocation, "場所", d.Location + "_"},
		{fieldMemo, "メモ", d.Memo + "_"},
	}

	var b strings.Builder
	b.WriteString(m.styles.ModalTitle.Render(m.dateTitle(m.modal.Date) + "  " + timeValue))
	b.WriteString("\n\n")
	for _, row := range rows {
		label := m.styles.Label.Render(fmt.Sprintf("%-4s", row.label))
		if row.field == m.focus {
			label = m.styles.Focused.Render(fmt.Sprintf("%-4s", row.label))
		}
		b.WriteString(label + " " + row.value + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("tab: 移動  ←→: 選択  enter: 登録  esc: 戻る"))
	return m.styles.Modal.Render(b.String())
}

func (m *Model) statusView() string {
	if m.message != "" {
		return m.styles.Status.Render(m.message)
	}
	if m.owner == "" {
		return m.styles.Status.Render("ユーザーIDが設定されていません (--owner で指定)")
	}
	return m.styles.Help.Render("hjkl: 移動  <>: 月  t: 今日  enter: 詳細  r: 更新  q: 終了")
}

func (m *Model) dateTitle(date time.Time) string {
	if m.locale == schedule.LocaleKO {
		return fmt.Sprintf("%d년 %d월 %d일", date.Year(), int(date.Month()), date.Day())
	}
	return fmt.Sprintf("%d年 %d月 %d日", date.Year(), int(date.Month()), date.Day())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "--"
	}
	return "◀ " + s + " ▶"
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
