// Package render prints views and notifications for the terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/saadjs/nutriplan/internal/model"
	"github.com/saadjs/nutriplan/internal/provider/mealdb"
	"github.com/saadjs/nutriplan/internal/provider/openfoodfacts"
	"github.com/saadjs/nutriplan/internal/service"
)

const (
	barWidth   = 20
	chartWidth = 30
)

type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Printer writes styled output to one writer. Colors follow what the writer
// supports, so output to a pipe or buffer is plain text.
type Printer struct {
	w io.Writer

	title   lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	hint    lipgloss.Style
	filled  lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "30", Dark: "45"}),
		label:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "240"}),
		value:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "0", Dark: "15"}),
		hint:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "242", Dark: "240"}),
		filled:  r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}),
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "28", Dark: "40"}),
		failure: r.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"}),
	}
}

// Notify prints a one-line notification.
func (p *Printer) Notify(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	switch level {
	case LevelSuccess:
		fmt.Fprintln(p.w, p.success.Render("✓ "+msg))
	case LevelError:
		fmt.Fprintln(p.w, p.failure.Render("✗ "+msg))
	default:
		fmt.Fprintln(p.w, p.hint.Render("• "+msg))
	}
}

func (p *Printer) Today(v service.TodayView) {
	fmt.Fprintln(p.w, p.title.Render("Today "+v.Date))
	if len(v.Entries) == 0 {
		fmt.Fprintln(p.w, p.hint.Render("  nothing logged yet"))
	} else {
		p.entryLines(v.Entries, false)
	}
	fmt.Fprintln(p.w)
	for _, np := range v.Progress {
		fmt.Fprintf(p.w, "%s %s %s %s\n",
			p.label.Render(fmt.Sprintf("%-8s", np.Nutrient)),
			p.bar(np.Percent),
			p.value.Render(fmt.Sprintf("%3.0f%%", np.Percent)),
			p.hint.Render(fmt.Sprintf("%s/%s %s", amount(np.Actual), amount(np.Target), np.Unit)),
		)
	}
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("fiber   "), p.value.Render(amount(v.Totals.Fiber)+" g"))
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("sugar   "), p.value.Render(amount(v.Totals.Sugar)+" g"))
}

// Week prints the seven day trend as a table with a calorie bar per day,
// scaled to the busiest day.
func (p *Printer) Week(w service.WeekTrend) {
	fmt.Fprintln(p.w, p.title.Render("Last 7 days"))
	fmt.Fprintln(p.w, p.label.Render(fmt.Sprintf("%-3s %-10s %7s %7s %7s %7s", "day", "date", "kcal", "prot", "carbs", "fat")))
	peak := 0.0
	for _, pt := range w.Points {
		peak = math.Max(peak, pt.Totals.Calories)
	}
	for _, pt := range w.Points {
		t := pt.Totals
		fmt.Fprintf(p.w, "%-3s %-10s %7s %7s %7s %7s  %s\n",
			pt.Label, pt.Date, amount(t.Calories), amount(t.Protein), amount(t.Carbs), amount(t.Fat),
			p.filled.Render(strings.Repeat("█", scaled(t.Calories, peak, chartWidth))))
	}
	avg := w.Average()
	fmt.Fprintln(p.w, p.hint.Render(fmt.Sprintf("avg %s kcal/day, %s g protein", amount(avg.Calories), amount(avg.Protein))))
}

// Entries lists log entries with their ids, for remove.
func (p *Printer) Entries(entries []model.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(p.w, p.hint.Render("no entries"))
		return
	}
	p.entryLines(entries, true)
}

func (p *Printer) entryLines(entries []model.LogEntry, withID bool) {
	for _, e := range entries {
		name := e.Name
		if e.Kind == model.KindProduct {
			name = fmt.Sprintf("%s (%s, %s)", e.Name, e.Brand, e.Quantity)
		}
		prefix := "  " + e.Timestamp.Format("15:04")
		if withID {
			prefix = e.ID + "  " + e.Timestamp.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(p.w, "%s %s %s %s\n",
			p.label.Render(prefix),
			p.label.Render(fmt.Sprintf("%-7s", e.Kind)),
			p.value.Render(name),
			p.hint.Render(amount(e.Nutrition.Calories)+" kcal"))
	}
}

func (p *Printer) Meals(meals []mealdb.Meal) {
	if len(meals) == 0 {
		fmt.Fprintln(p.w, p.hint.Render("no recipes found"))
		return
	}
	for _, m := range meals {
		fmt.Fprintf(p.w, "%s %s %s\n",
			p.label.Render(fmt.Sprintf("%-6s", m.ID)),
			p.value.Render(m.Name),
			p.hint.Render(strings.Trim(m.Category+" / "+m.Area, " /")))
	}
}

func (p *Printer) Meal(m mealdb.Meal) {
	fmt.Fprintln(p.w, p.title.Render(m.Name))
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("category"), p.value.Render(m.Category))
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render("area    "), p.value.Render(m.Area))
	if id := m.YouTubeID(); id != "" {
		fmt.Fprintf(p.w, "%s %s\n", p.label.Render("video   "), p.value.Render("https://www.youtube.com/embed/"+id))
	}
	if len(m.Ingredients) > 0 {
		fmt.Fprintln(p.w, p.label.Render("ingredients"))
		for _, in := range m.Ingredients {
			fmt.Fprintf(p.w, "  - %s %s\n", in.Name, p.hint.Render(in.Measure))
		}
	}
	if s := strings.TrimSpace(m.Instructions); s != "" {
		fmt.Fprintln(p.w, p.label.Render("instructions"))
		fmt.Fprintln(p.w, s)
	}
}

func (p *Printer) Categories(counts []service.CategoryCount) {
	for _, c := range counts {
		fmt.Fprintf(p.w, "%s %s\n", p.value.Render(fmt.Sprintf("%-16s", c.Category)), p.hint.Render(fmt.Sprintf("%d", c.Count)))
	}
}

func (p *Printer) Products(products []openfoodfacts.Product) {
	if len(products) == 0 {
		fmt.Fprintln(p.w, p.hint.Render("no products found"))
		return
	}
	for _, pr := range products {
		p.productLine(pr)
	}
}

func (p *Printer) productLine(pr openfoodfacts.Product) {
	grade := "-"
	if pr.NutritionGrade != "" {
		grade = strings.ToUpper(pr.NutritionGrade)
	}
	fmt.Fprintf(p.w, "%s %s %s %s\n",
		p.label.Render(fmt.Sprintf("%-14s", pr.Code)),
		p.value.Render(nonEmpty(pr.Name, model.PlaceholderProductName)),
		p.hint.Render(nonEmpty(pr.Brand, model.PlaceholderBrand)),
		p.hint.Render(fmt.Sprintf("nutri-score %s, %s kcal/100g", grade, amount(pr.Nutriments.Calories))))
}

func (p *Printer) Product(pr openfoodfacts.Product, fromCache bool) {
	p.productLine(pr)
	n := pr.Nutriments
	fmt.Fprintf(p.w, "  per 100g: %s kcal, protein %s g, carbs %s g, fat %s g, fiber %s g, sugar %s g\n",
		amount(n.Calories), amount(n.Protein), amount(n.Carbs), amount(n.Fat), amount(n.Fiber), amount(n.Sugar))
	if pr.NovaGroup > 0 {
		fmt.Fprintf(p.w, "  NOVA group %d\n", pr.NovaGroup)
	}
	if fromCache {
		fmt.Fprintln(p.w, p.hint.Render("  (cached)"))
	}
}

func (p *Printer) ProductCache(items []service.ProductCacheItem) {
	if len(items) == 0 {
		fmt.Fprintln(p.w, p.hint.Render("cache is empty"))
		return
	}
	for _, it := range items {
		fmt.Fprintf(p.w, "%s %s %s\n",
			p.label.Render(fmt.Sprintf("%-14s", it.Barcode)),
			p.value.Render(it.Name),
			p.hint.Render("expires "+it.ExpiresAt.Format("2006-01-02")))
	}
}

// KeyValues prints a title followed by aligned label/value rows.
func (p *Printer) KeyValues(title string, rows [][2]string) {
	fmt.Fprintln(p.w, p.title.Render(title))
	width := 0
	for _, r := range rows {
		width = max(width, len(r[0]))
	}
	for _, r := range rows {
		fmt.Fprintf(p.w, "  %s  %s\n", p.label.Render(fmt.Sprintf("%-*s", width, r[0])), p.value.Render(r[1]))
	}
}

func (p *Printer) Doctor(r service.DoctorReport) {
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("entries          "), r.Entries)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("duplicate ids    "), r.DuplicateIDs)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("missing dates    "), r.ZeroTimestamps)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("invalid nutrition"), r.InvalidNutrition)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("future entries   "), r.FutureEntries)
	for _, is := range r.Issues {
		fmt.Fprintf(p.w, "  %s %s\n", p.value.Render(is.EntryID), p.hint.Render(is.Problem))
	}
}

func (p *Printer) bar(percent float64) string {
	n := scaled(percent, 100, barWidth)
	return p.filled.Render(strings.Repeat("█", n)) + p.hint.Render(strings.Repeat("░", barWidth-n))
}

// scaled maps v in [0, limit] onto [0, width] cells.
func scaled(v, limit float64, width int) int {
	if limit <= 0 || v <= 0 || math.IsNaN(v) {
		return 0
	}
	n := int(math.Round(v / limit * float64(width)))
	if n > width {
		return width
	}
	return n
}

func amount(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func nonEmpty(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
