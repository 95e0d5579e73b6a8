package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/valter-silva-au/swarm/pkg/models"
	"gopkg.in/yaml.v3"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("formatting as JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printYAML(w io.Writer, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("formatting as YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func newTable(w io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	// Headers and card types are shown as written.
	tw.Style().Format.Header = text.FormatDefault
	return tw
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// cardColumns controls which optional columns a card table shows.
type cardColumns struct {
	score bool
	lines bool // resolve both task references to their summary line
}

func renderCards(w io.Writer, cards []models.Card, cols cardColumns, taskLine func(string) string) {
	tw := newTable(w)
	header := table.Row{"Match", "Type", "A", "A prod", "A cap", "B", "B prod", "B cap"}
	if cols.score {
		header = append(header, "Score")
	}
	header = append(header, "Signals", "Cross")
	tw.AppendHeader(header)

	for _, c := range cards {
		a, b := c.AID, c.BID
		if cols.lines && taskLine != nil {
			a, b = taskLine(c.AID), taskLine(c.BID)
		}
		row := table.Row{c.MatchID, c.Type, a, c.AProd, c.ACap, b, c.BProd, c.BCap}
		if cols.score {
			row = append(row, c.Score)
		}
		row = append(row, c.Signals, yesNo(c.CrossProduct))
		tw.AppendRow(row)
	}
	tw.Render()
}
