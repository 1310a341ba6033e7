package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/banshee-data/wispify/internal/wisp/spectrastore"
)

func (c *CLI) libraryCommand() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage spectra collections stored in a database",
	}
	cmd.PersistentFlags().StringVar(&database, "library-db", "spectra.db", "spectra database")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored collections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := spectrastore.Open(database)
			if err != nil {
				return err
			}
			defer store.Close()
			cols, err := store.ListCollections(cmd.Context())
			if err != nil {
				return err
			}
			if len(cols) == 0 {
				fmt.Fprintln(c.Out, StyleDim.Render("no collections in "+database))
				return nil
			}

			t := table.New().
				Border(lipgloss.NormalBorder()).
				BorderStyle(StyleDim).
				Headers("name", "mode", "amplitudes", "phases", "created", "id")
			for _, col := range cols {
				t.Row(col.Name, col.Mode.String(), strconv.Itoa(col.Amplitudes), strconv.Itoa(col.Phases),
					col.CreatedAt.Format(time.RFC3339), col.ID.String())
			}
			fmt.Fprintln(c.Out, t.Render())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <name>...",
		Short: "Delete collections by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := spectrastore.Open(database)
			if err != nil {
				return err
			}
			defer store.Close()
			logger := loggerFromContext(cmd.Context())
			for _, name := range args {
				if err := store.DeleteCollection(cmd.Context(), name); err != nil {
					return err
				}
				logger.Info("deleted collection", "name", name)
			}
			return nil
		},
	})
	return cmd
}
