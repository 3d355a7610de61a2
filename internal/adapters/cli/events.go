package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/queries"
)

// NewEventsCommand creates the events command
func NewEventsCommand() *cobra.Command {
	var fleet, runID, name string
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List logged scheduling events",
		Long: `List the scheduling events recorded by 'seafaring simulate --persist'.

Event names: assignment, load_reduced, expedition_launched, ship_rerouted,
stranded_cargo.

Examples:
  seafaring events --fleet north-sea
  seafaring events --fleet north-sea --name stranded_cargo`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fleetName, err := defaultFleet(fleet)
			if err != nil {
				return err
			}
			return withQueryMediator(cmd.Context(), func(ctx context.Context, m mediator.Mediator) error {
				resp, err := m.Send(ctx, &queries.ListEventsQuery{Fleet: fleetName, RunID: runID, Name: name, Limit: limit})
				if err != nil {
					return err
				}
				result := resp.(*queries.ListEventsResponse)
				if len(result.Events) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No events logged for fleet %s\n", fleetName)
					return nil
				}
				renderEvents(cmd.OutOrStdout(), result.Events)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fleet, "fleet", "", "Fleet name (default: stored preference)")
	cmd.Flags().StringVar(&runID, "run", "", "Only events of this run")
	cmd.Flags().StringVar(&name, "name", "", "Only events with this name")
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum events to list (0 for all)")

	return cmd
}
