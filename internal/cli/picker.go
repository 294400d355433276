package cli

import (
	"fmt"

	"charm.land/bubbles/v2/list"
	tea "charm.land/bubbletea/v2"
	"github.com/generalanalysis/redit-cli/internal/client"
)

// jobItem adapts a job for the list component.
type jobItem struct {
	job client.Job
}

func (i jobItem) Title() string {
	return fmt.Sprintf("#%d  %s", i.job.ID, truncate(i.job.Description, 50))
}

func (i jobItem) Description() string {
	return fmt.Sprintf("%s | %s objectives | created %s",
		i.job.Status,
		formatProgress(i.job.CompletedObjectives, i.job.TotalObjectives),
		formatTime(i.job.CreatedAt))
}

func (i jobItem) FilterValue() string {
	return fmt.Sprintf("%d %s %s", i.job.ID, i.job.Description, i.job.Status)
}

// pickerModel is the bubbletea model for interactive job selection.
type pickerModel struct {
	list   list.Model
	choice *client.Job
}

func newPickerModel(jobs []client.Job) pickerModel {
	items := make([]list.Item, len(jobs))
	for i, job := range jobs {
		items[i] = jobItem{job: job}
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 20)
	l.Title = "Select a job (enter to confirm, q to cancel)"
	l.SetShowStatusBar(false)

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter":
			if item, ok := m.list.SelectedItem().(jobItem); ok {
				job := item.job
				m.choice = &job
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() tea.View {
	return tea.NewView(m.list.View())
}

// pickJob runs the interactive job picker and returns the chosen job ID.
func pickJob(jobs []client.Job) (int64, error) {
	p := tea.NewProgram(newPickerModel(jobs))

	finalModel, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("job picker error: %w", err)
	}

	m, ok := finalModel.(pickerModel)
	if !ok || m.choice == nil {
		return 0, fmt.Errorf("selection cancelled")
	}
	return m.choice.ID, nil
}
