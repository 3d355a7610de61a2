package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/andrescamacho/seafaring-go/internal/application/schedule/dtos"
	"github.com/andrescamacho/seafaring-go/internal/application/simulation/commands"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

func newTable(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	return tw
}

func renderRunSummary(out io.Writer, result *commands.RunSimulationResponse) {
	tw := newTable(out)
	tw.SetTitle("Simulation " + result.RunID)
	tw.AppendRows([]table.Row{
		{"Fleet", result.Fleet},
		{"Ticks", result.Ticks},
		{"Simulated time", result.FinalTime.String()},
		{"Delivered", result.Delivered},
		{"Waiting", result.Waiting},
		{"Expeditions", result.Launched},
	})
	if result.ResumedFrom != "" {
		tw.AppendRow(table.Row{"Resumed from", result.ResumedFrom})
	}
	if len(result.SnapshotIDs) > 0 {
		tw.AppendRow(table.Row{"Snapshots", strings.Join(result.SnapshotIDs, "\n")})
	}

	names := make([]string, 0, len(result.Events))
	for name := range result.Events {
		names = append(names, name)
	}
	sort.Strings(names)
	tw.AppendSeparator()
	for _, name := range names {
		tw.AppendRow(table.Row{"Events: " + name, result.Events[name]})
	}
	tw.Render()
}

func renderPlans(out io.Writer, plans []dtos.PlanDTO) {
	tw := newTable(out)
	tw.AppendHeader(table.Row{"Ship", "#", "Port", "Leg", "ETA", "Kind", "Loads"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, AutoMerge: true},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})
	for _, plan := range plans {
		if len(plan.Stops) == 0 {
			tw.AppendRow(table.Row{plan.Ship.String(), "-", "idle", "", "", "", ""})
			continue
		}
		for i, stop := range plan.Stops {
			kind := "cargo"
			if stop.Expedition {
				kind = "expedition"
			}
			tw.AppendRow(table.Row{plan.Ship.String(), i, stop.Port.String(), stop.Duration.String(), stop.ETA.String(), kind, formatLoads(stop.Loads)})
		}
	}
	tw.Render()
}

func formatLoads(loads []dtos.LoadDTO) string {
	parts := make([]string, 0, len(loads))
	for _, l := range loads {
		parts = append(parts, fmt.Sprintf("%d->%s", l.Quantity, l.Destination))
	}
	return strings.Join(parts, ", ")
}

func renderSnapshotList(out io.Writer, summaries []shipping.SnapshotSummary) {
	tw := newTable(out)
	tw.AppendHeader(table.Row{"ID", "Run", "Taken", "Game time", "Ships", "Stops"})
	for _, s := range summaries {
		tw.AppendRow(table.Row{s.ID, s.RunID, s.TakenAt.Format("2006-01-02 15:04:05"), s.GameTime.String(), s.ShipCount, s.StopCount})
	}
	tw.Render()
}

func renderEvents(out io.Writer, records []shipping.EventRecord) {
	tw := newTable(out)
	tw.AppendHeader(table.Row{"Game time", "Event", "Ship", "Port", "Run", "Details"})
	for _, r := range records {
		tw.AppendRow(table.Row{r.GameTime.String(), r.Name, r.Ship.String(), r.Port.String(), r.RunID, formatPayload(r.Payload)})
	}
	tw.Render()
}

func formatPayload(payload map[string]interface{}) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		if k == "Ship" || k == "At" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, payload[k]))
	}
	return strings.Join(parts, " ")
}
