package output

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/sip/internal/models"
)

// TestFormatTimeAgo tests the relative time buckets
func TestFormatTimeAgo(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{1 * time.Minute, "1m ago"},
		{30 * time.Minute, "30m ago"},
		{1 * time.Hour, "1h ago"},
		{23 * time.Hour, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{6 * 24 * time.Hour, "6d ago"},
	}

	for _, tc := range tests {
		result := FormatTimeAgo(time.Now().Add(-tc.duration))
		if result != tc.expected {
			t.Errorf("FormatTimeAgo(-%v) = %q, want %q", tc.duration, result, tc.expected)
		}
	}

	old := time.Now().Add(-30 * 24 * time.Hour)
	if got := FormatTimeAgo(old); got != old.Format("2006-01-02") {
		t.Errorf("FormatTimeAgo(old) = %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		ml       int
		expected string
	}{
		{0, "0ml"},
		{250, "250ml"},
		{999, "999ml"},
		{1000, "1L"},
		{1500, "1.5L"},
		{2250, "2.25L"},
		{3000, "3L"},
	}
	for _, tc := range tests {
		if got := FormatAmount(tc.ml); got != tc.expected {
			t.Errorf("FormatAmount(%d) = %q, want %q", tc.ml, got, tc.expected)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(55); got != "55%" {
		t.Errorf("FormatPercent(55) = %q", got)
	}
	if got := FormatPercent(99.6); got != "100%" {
		t.Errorf("FormatPercent(99.6) = %q", got)
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pct    float64
		filled int
	}{
		{0, 0},
		{50, 5},
		{55, 5},
		{100, 10},
		{150, 10},
		{-5, 0},
	}
	for _, tc := range tests {
		bar := ansi.Strip(ProgressBar(tc.pct, 10))
		if got := strings.Count(bar, "█"); got != tc.filled {
			t.Errorf("ProgressBar(%v) filled = %d, want %d", tc.pct, got, tc.filled)
		}
		if got := ansi.StringWidth(bar); got != 10 {
			t.Errorf("ProgressBar(%v) width = %d, want 10", tc.pct, got)
		}
	}
	if ProgressBar(50, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestProgressBadge(t *testing.T) {
	tests := []struct {
		p        models.WeeklyProgress
		contains string
	}{
		{models.WeeklyProgress{TotalIntake: 2000, GoalAmount: 2000, Percentage: 100}, "goal met"},
		{models.WeeklyProgress{TotalIntake: 1100, GoalAmount: 2000, Percentage: 55}, "55%"},
		{models.WeeklyProgress{GoalAmount: 2000}, "nothing yet"},
	}
	for _, tc := range tests {
		if got := ansi.Strip(ProgressBadge(tc.p)); !strings.Contains(got, tc.contains) {
			t.Errorf("ProgressBadge(%+v) = %q, want %q", tc.p, got, tc.contains)
		}
	}
}

func TestFormatIntakeShort(t *testing.T) {
	in := models.WaterIntake{
		ID:        "0f8fad5b-d9cb-469f-a165-70867728950e",
		Amount:    500,
		Timestamp: time.Date(2024, 1, 1, 14, 5, 0, 0, time.UTC),
		Date:      "2024-01-01",
	}
	got := ansi.Strip(FormatIntakeShort(in, time.UTC))
	for _, want := range []string{"0f8fad5b", "14:05", "500ml"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatIntakeShort missing %q: %q", want, got)
		}
	}
	if strings.Contains(got, "d9cb") {
		t.Errorf("id not truncated: %q", got)
	}
}

func TestFormatProgressLine(t *testing.T) {
	p := models.WeeklyProgress{Date: "2024-01-01", TotalIntake: 1100, GoalAmount: 2000, Percentage: 55}
	got := ansi.Strip(FormatProgressLine(p, 10, "2024-01-01"))
	for _, want := range []string{"Mon 01-01", "1.1L / 2L", "55%"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatProgressLine missing %q: %q", want, got)
		}
	}
}

func TestFormatReminder(t *testing.T) {
	r := models.DefaultReminders()[0]
	got := ansi.Strip(FormatReminder(r, 10))
	if !strings.Contains(got, "08:00") || !strings.Contains(got, "[on]") {
		t.Errorf("FormatReminder = %q", got)
	}
	if strings.Contains(got, "glass of water") {
		t.Errorf("message not truncated: %q", got)
	}

	r.Enabled = false
	if got := ansi.Strip(FormatReminder(r, 0)); !strings.Contains(got, "[off]") || !strings.Contains(got, r.Message) {
		t.Errorf("disabled FormatReminder = %q", got)
	}
}

func TestErrorCodeConstants(t *testing.T) {
	codes := map[string]string{
		"ErrCodeNotFound":     ErrCodeNotFound,
		"ErrCodeInvalidInput": ErrCodeInvalidInput,
		"ErrCodeStorageError": ErrCodeStorageError,
	}
	for name, code := range codes {
		if code == "" || strings.ToLower(code) != code {
			t.Errorf("%s = %q, want non-empty snake_case", name, code)
		}
	}
}

func TestSectionHeader(t *testing.T) {
	if got := SectionHeader("today"); got != "\nTODAY:\n" {
		t.Errorf("SectionHeader = %q", got)
	}
}

func TestIndentString(t *testing.T) {
	if got := IndentString("a\nb", 2); got != "  a\n  b" {
		t.Errorf("IndentString = %q", got)
	}
	if got := IndentString("", 4); got != "" {
		t.Errorf("IndentString(empty) = %q", got)
	}
}

func TestWeeklyReportMarkdown(t *testing.T) {
	progress := []models.WeeklyProgress{
		{Date: "2024-01-01", TotalIntake: 2500, GoalAmount: 2000, Percentage: 100},
		{Date: "2024-01-02", TotalIntake: 1000, GoalAmount: 2000, Percentage: 50},
		{Date: "2024-01-03", TotalIntake: 0, GoalAmount: 2000, Percentage: 0},
	}
	md := WeeklyReportMarkdown("This Week", progress)
	for _, want := range []string{
		"# This Week",
		"_2024-01-01 to 2024-01-03_",
		"| Mon Jan 1 | 2.5L | 2L | 100% ✓ |",
		"| Tue Jan 2 | 1L | 2L | 50% |",
		"**Goals met:** 1 of 3",
		"**Daily average:** 1.75L",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("report missing %q:\n%s", want, md)
		}
	}
}

func TestRenderMarkdownWithWidth(t *testing.T) {
	out, err := RenderMarkdownWithWidth("# Hydration\n\nDrink **water**.", 40)
	if err != nil {
		t.Fatalf("RenderMarkdownWithWidth failed: %v", err)
	}
	if !strings.Contains(ansi.Strip(out), "water") {
		t.Errorf("rendered output missing text: %q", out)
	}
	if out, _ := RenderMarkdownWithWidth("   ", 40); out != "" {
		t.Errorf("blank input rendered %q", out)
	}
}

func TestRenderMarkdownPlainWhenPiped(t *testing.T) {
	// go test's stdout is not a terminal, so the notty style applies
	out, err := RenderMarkdown(WeeklyReportMarkdown("This Week", []models.WeeklyProgress{
		{Date: "2024-01-01", TotalIntake: 2000, GoalAmount: 2000, Percentage: 100},
	}))
	if err != nil {
		t.Fatalf("RenderMarkdown failed: %v", err)
	}
	if !strings.Contains(out, "This Week") || !strings.Contains(out, "2L") {
		t.Errorf("report missing content:\n%s", out)
	}
}
