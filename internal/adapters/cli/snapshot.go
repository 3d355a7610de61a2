package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/seafaring-go/internal/application/mediator"
	"github.com/andrescamacho/seafaring-go/internal/application/schedule/queries"
)

// NewSnapshotCommand creates the snapshot command with subcommands
func NewSnapshotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Inspect stored scheduler snapshots",
		Long: `Inspect scheduler snapshots stored by 'seafaring simulate --persist'.

Examples:
  seafaring snapshot list --fleet north-sea
  seafaring snapshot show --fleet north-sea
  seafaring snapshot show --id 6f1c2a7e-...`,
	}

	cmd.AddCommand(newSnapshotListCommand())
	cmd.AddCommand(newSnapshotShowCommand())

	return cmd
}

func newSnapshotListCommand() *cobra.Command {
	var fleet string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a fleet's snapshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := defaultFleet(fleet)
			if err != nil {
				return err
			}
			return withQueryMediator(cmd.Context(), func(ctx context.Context, m mediator.Mediator) error {
				resp, err := m.Send(ctx, &queries.ListSnapshotsQuery{Fleet: name, Limit: limit})
				if err != nil {
					return err
				}
				result := resp.(*queries.ListSnapshotsResponse)
				if len(result.Snapshots) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No snapshots stored for fleet %s\n", name)
					return nil
				}
				renderSnapshotList(cmd.OutOrStdout(), result.Snapshots)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fleet, "fleet", "", "Fleet name (default: stored preference)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum snapshots to list (0 for all)")

	return cmd
}

func newSnapshotShowCommand() *cobra.Command {
	var fleet string
	var id string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the plan table of a snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := &queries.GetSnapshotQuery{ID: id}
			if id == "" {
				name, err := defaultFleet(fleet)
				if err != nil {
					return err
				}
				query.Fleet = name
			}
			return withQueryMediator(cmd.Context(), func(ctx context.Context, m mediator.Mediator) error {
				resp, err := m.Send(ctx, query)
				if err != nil {
					return err
				}
				result := resp.(*queries.GetSnapshotResponse)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Snapshot %s (fleet %s, run %s)\n", result.Summary.ID, result.Summary.Fleet, result.Summary.RunID)
				fmt.Fprintf(out, "Last update %s, last exact ETA %s\n\n", result.Summary.GameTime, result.LastExactETA)
				renderPlans(out, result.Plans)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&fleet, "fleet", "", "Show the latest snapshot of this fleet")
	cmd.Flags().StringVar(&id, "id", "", "Snapshot id")

	return cmd
}
