package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/renato0307/chordd/internal/adapters/storage"
	"github.com/renato0307/chordd/internal/domain"
	"github.com/renato0307/chordd/internal/theme"
)

// HistoryCmd shows recently spawned commands from the journal
type HistoryCmd struct {
	Format string `help:"Output format (table or json)" default:"table" enum:"table,json"`
	Limit  int    `help:"Maximum number of results" default:"20" short:"l"`
}

// spawnJSON represents a journal row in JSON format
type spawnJSON struct {
	Chord       string `json:"chord"`
	Command     string `json:"command"`
	Error       string `json:"error,omitempty"`
	ExecutionID string `json:"execution_id"`
	ExitCode    *int   `json:"exit_code,omitempty"`
	ExitedAt    string `json:"exited_at,omitempty"`
	PID         int    `json:"pid"`
	SpawnedAt   string `json:"spawned_at"`
}

// Run executes the history command
func (h *HistoryCmd) Run(cli *CLI) error {
	cfg, err := cli.LoadConfigOrDefaults()
	if err != nil {
		return err
	}

	journal, err := storage.NewSQLiteJournal(cfg.Journal.Path, "")
	if err != nil {
		return err
	}
	defer journal.Close()

	records, err := journal.Recent(context.Background(), h.Limit)
	if err != nil {
		return err
	}

	switch h.Format {
	case "json":
		return h.renderJSON(records)
	default:
		h.renderTable(records)
		return nil
	}
}

// exitLabel describes how a spawn ended
func exitLabel(rec domain.SpawnRecord) (string, lipgloss.Style) {
	switch {
	case rec.Error != "":
		return "failed: " + rec.Error, theme.ErrorStyle
	case rec.ExitCode == nil:
		return "running", theme.RunningStyle
	case *rec.ExitCode == 0:
		return "0", theme.OKStyle
	default:
		return strconv.Itoa(*rec.ExitCode), theme.ErrorStyle
	}
}

func (h *HistoryCmd) renderTable(records []domain.SpawnRecord) {
	if len(records) == 0 {
		fmt.Println("No spawns recorded.")
		return
	}

	exitStyles := make([]lipgloss.Style, len(records))
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.BorderStyle).
		Headers("Spawned", "Chord", "PID", "Exit", "Command").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return theme.HeaderStyle
			case col == 1:
				return theme.ChordStyle
			case col == 3 && row >= 0 && row < len(exitStyles):
				return exitStyles[row]
			default:
				return theme.CellStyle
			}
		})
	for i, rec := range records {
		label, style := exitLabel(rec)
		exitStyles[i] = style
		pid := "-"
		if rec.PID != 0 {
			pid = strconv.Itoa(rec.PID)
		}
		t.Row(rec.SpawnedAt.Local().Format("2006-01-02 15:04:05"), rec.Chord, pid, label, rec.Command)
	}

	fmt.Println(t)
}

func (h *HistoryCmd) renderJSON(records []domain.SpawnRecord) error {
	out := make([]spawnJSON, 0, len(records))
	for _, rec := range records {
		row := spawnJSON{
			Chord:       rec.Chord,
			Command:     rec.Command,
			Error:       rec.Error,
			ExecutionID: rec.ExecutionID,
			ExitCode:    rec.ExitCode,
			PID:         rec.PID,
			SpawnedAt:   rec.SpawnedAt.Format(time.RFC3339),
		}
		if rec.ExitedAt != nil {
			row.ExitedAt = rec.ExitedAt.Format(time.RFC3339)
		}
		out = append(out, row)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
