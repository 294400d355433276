package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/generalanalysis/redit-cli/internal/client"
	"golang.org/x/term"
)

// Theme holds the color scheme for CLI output.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Warning: lipgloss.Color("#FFAF00"), // amber
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) warningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Warning)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// statusLabel renders a job status with its conventional color.
func statusLabel(s client.JobStatus) string {
	if s == "" {
		return "Unknown"
	}
	label := strings.ToUpper(string(s)[:1]) + string(s)[1:]
	switch {
	case s == client.StatusCompleted:
		return defaultTheme.successStyle().Render(label)
	case s.Failure():
		return defaultTheme.errorStyle().Render(label)
	case s == client.StatusRunning:
		return defaultTheme.statusStyle().Render(label)
	case s == client.StatusCancelled:
		return defaultTheme.warningStyle().Render(label)
	default:
		return label
	}
}

// formatTime renders a timestamp in local time, or "N/A" for zero values.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// formatProgress renders "completed/total" or "N/A" when the total is unknown.
func formatProgress(completed, total int) string {
	if total <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d", completed, total)
}

// formatASR renders an attack success rate as a percentage.
func formatASR(asr *float64) string {
	if asr == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%%", *asr*100)
}

// truncate shortens s to max runes, appending an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// printJSON pretty-prints v as indented JSON to stdout.
func printJSON(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	fmt.Println(string(buf))
	return nil
}

// confirm asks the user a yes/no question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// isTerminal reports whether stdout is attached to a TTY.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
