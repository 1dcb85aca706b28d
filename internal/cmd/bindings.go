package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/renato0307/chordd/internal/services"
	"github.com/renato0307/chordd/internal/theme"
)

// BindingsCmd lists the configured bindings
type BindingsCmd struct {
	Format string `help:"Output format (table or json)" default:"table" enum:"table,json"`
}

// bindingJSON represents a binding in JSON format
type bindingJSON struct {
	Chord   string `json:"chord"`
	Command string `json:"command"`
	Index   uint64 `json:"index"`
	Key     string `json:"key"`
	Pattern string `json:"pattern"`
}

// Run executes the bindings command
func (b *BindingsCmd) Run(cli *CLI) error {
	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}

	rows, err := services.NewBindingService(nil).Describe(cfg)
	if err != nil {
		return err
	}

	switch b.Format {
	case "json":
		return b.renderJSON(rows)
	default:
		b.renderTable(rows)
		return nil
	}
}

func (b *BindingsCmd) renderTable(rows []services.BindingRow) {
	if len(rows) == 0 {
		fmt.Println("No bindings configured.")
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(theme.BorderStyle).
		Headers("#", "Pattern", "Chord", "Command").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return theme.HeaderStyle
			case col == 2:
				return theme.ChordStyle
			default:
				return theme.CellStyle
			}
		})
	for _, r := range rows {
		t.Row(strconv.FormatUint(r.Index, 10), r.Pattern, r.Chord.String(), r.Command)
	}

	fmt.Println(theme.TitleStyle.Render(fmt.Sprintf("%d bindings", len(rows))))
	fmt.Println(t)
}

func (b *BindingsCmd) renderJSON(rows []services.BindingRow) error {
	out := make([]bindingJSON, 0, len(rows))
	for _, r := range rows {
		key := r.Chord.Key()
		out = append(out, bindingJSON{
			Chord:   r.Chord.String(),
			Command: r.Command,
			Index:   r.Index,
			Key:     fmt.Sprintf("%x", key[:]),
			Pattern: r.Pattern,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal bindings: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
