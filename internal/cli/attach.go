package cli

import (
	"context"
	"fmt"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/generalanalysis/redit-cli/internal/client"
)

const (
	// defaultAttachInterval matches the server's recommended poll cadence.
	defaultAttachInterval = 5 * time.Second

	// fetchTimeout bounds a single status poll so an unresponsive server
	// can't block shutdown.
	fetchTimeout = 10 * time.Second

	// maxConsecutiveFailures is how many polls in a row may fail before
	// the monitor gives up on the server.
	maxConsecutiveFailures = 3
)

// attachOutcome is how a monitor session ended.
type attachOutcome int

const (
	outcomeNone attachOutcome = iota
	outcomeCompleted
	outcomeFailed    // job reported failed or error
	outcomeCancelled // job cancelled server-side
	outcomeInterrupted
	outcomeTimeout     // local max-wait exceeded; job keeps running
	outcomeUnreachable // consecutive poll failures exhausted
)

// jobGetter is the single client call the monitor needs.
type jobGetter interface {
	GetJob(ctx context.Context, id int64) (*client.Job, error)
}

// tickMsg triggers the next status poll.
type tickMsg time.Time

// jobUpdateMsg carries the polled job snapshot or the poll error.
type jobUpdateMsg struct {
	job *client.Job
	err error
}

// attachModel is the bubbletea model for monitoring a job. It issues
// exactly one request at a time: a tick schedules one fetch, and the
// next tick is only scheduled once that fetch's result is handled.
type attachModel struct {
	client    jobGetter
	jobID     int64
	job       *client.Job
	interval  time.Duration
	maxWait   time.Duration
	startedAt time.Time
	progress  progress.Model
	theme     Theme

	failures int // consecutive poll failures
	updates  int // successful polls handled
	outcome  attachOutcome
	err      error
}

// newAttachModel creates a monitor model for an already-validated job.
func newAttachModel(c jobGetter, job *client.Job, interval, maxWait time.Duration) attachModel {
	if interval <= 0 {
		interval = defaultAttachInterval
	}
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return attachModel{
		client:    c,
		jobID:     job.ID,
		job:       job,
		interval:  interval,
		maxWait:   maxWait,
		startedAt: time.Now(),
		progress:  prog,
		theme:     defaultTheme,
	}
}

// Init starts the poll cycle.
func (m attachModel) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m attachModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.outcome = outcomeInterrupted
			return m, tea.Quit
		}

	case tickMsg:
		if m.maxWait > 0 && time.Time(msg).Sub(m.startedAt) >= m.maxWait {
			m.outcome = outcomeTimeout
			return m, tea.Quit
		}
		return m, m.fetchJob()

	case jobUpdateMsg:
		if msg.err != nil {
			m.failures++
			if m.failures >= maxConsecutiveFailures {
				m.outcome = outcomeUnreachable
				m.err = fmt.Errorf("lost contact with server after %d attempts: %w", m.failures, msg.err)
				return m, tea.Quit
			}
			// Tolerated; keep polling.
			return m, m.tickCmd()
		}

		m.failures = 0
		m.updates++
		m.job = msg.job

		switch {
		case m.job.Status == client.StatusCompleted:
			m.outcome = outcomeCompleted
			return m, tea.Quit
		case m.job.Status.Failure():
			m.outcome = outcomeFailed
			if m.job.ErrorMessage != "" {
				m.err = fmt.Errorf("%s", m.job.ErrorMessage)
			}
			return m, tea.Quit
		case m.job.Status == client.StatusCancelled:
			m.outcome = outcomeCancelled
			return m, tea.Quit
		}

		return m, m.tickCmd()

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m attachModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m attachModel) renderContent() string {
	if m.outcome != outcomeNone {
		return ""
	}

	if m.job == nil {
		return "Loading job status...\n"
	}

	var pct float64
	if m.job.TotalObjectives > 0 {
		pct = float64(m.job.CompletedObjectives) / float64(m.job.TotalObjectives)
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.job.Status))
	progressBar := m.progress.ViewAs(pct)
	counts := formatProgress(m.job.CompletedObjectives, m.job.TotalObjectives)
	elapsed := time.Since(m.startedAt).Round(time.Second)

	line := fmt.Sprintf("%s %s %s objectives | %s elapsed", status, progressBar, counts, elapsed)

	if m.failures > 0 {
		line += "\n" + m.theme.warningStyle().Render(
			fmt.Sprintf("reconnecting (%d/%d)...", m.failures, maxConsecutiveFailures))
	}

	hint := m.theme.hintStyle().Render("Press Ctrl+C to detach; the job keeps running")
	return fmt.Sprintf("%s\n%s\n", line, hint)
}

// fetchJob polls the job status. Runs as a command (separate goroutine)
// so Update never blocks; the per-request timeout guarantees the poll
// returns promptly even when the server hangs.
func (m attachModel) fetchJob() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		job, err := m.client.GetJob(ctx, m.jobID)
		return jobUpdateMsg{job: job, err: err}
	}
}

// tickCmd schedules the next poll after the configured interval.
func (m attachModel) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// runMonitor runs the interactive monitor UI until the job reaches a
// terminal state, the user detaches, the max wait elapses, or the
// server becomes unreachable.
func runMonitor(c jobGetter, job *client.Job, interval, maxWait time.Duration) (attachOutcome, *client.Job, error) {
	model := newAttachModel(c, job, interval, maxWait)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return outcomeNone, job, fmt.Errorf("monitor UI error: %w", err)
	}

	m, ok := finalModel.(attachModel)
	if !ok {
		return outcomeNone, job, fmt.Errorf("unexpected monitor model type")
	}
	return m.outcome, m.job, m.err
}
