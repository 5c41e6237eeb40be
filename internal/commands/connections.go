package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agewise-dev/agewise/internal/config"
	"github.com/agewise-dev/agewise/internal/connections"
	"github.com/agewise-dev/agewise/internal/model"
)

func newConnectionsCommand() *cobra.Command {
	connCmd := &cobra.Command{
		Use:   "connections",
		Short: "Manage provider connections",
	}
	connCmd.AddCommand(newConnectionsListCommand())
	connCmd.AddCommand(newConnectionsAddCommand())
	connCmd.AddCommand(newConnectionsDeactivateCommand())
	return connCmd
}

func openStore(configPath string) (*connections.PostgresStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	store, err := connections.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return store, nil
}

func newConnectionsListCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			conns, err := store.AllActive(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTENANT ID\tTENANT NAME\tBUSINESS UNIT")
			for _, conn := range conns {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", conn.ID, conn.TenantID, conn.TenantName, conn.BusinessUnit)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "agewise.yaml", "config file path")
	return cmd
}

func newConnectionsAddCommand() *cobra.Command {
	var configPath string
	var conn model.Connection

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			conn.Active = true
			saved, err := store.Save(cmd.Context(), conn)
			if err != nil {
				return err
			}
			fmt.Printf("Saved connection %d (%s)\n", saved.ID, saved.TenantName)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "agewise.yaml", "config file path")
	cmd.Flags().StringVar(&conn.TenantID, "tenant-id", "", "provider tenant id (required)")
	_ = cmd.MarkFlagRequired("tenant-id")
	cmd.Flags().StringVar(&conn.TenantName, "tenant-name", "", "company display name")
	cmd.Flags().StringVar(&conn.BusinessUnit, "business-unit", "", "business unit label")
	cmd.Flags().StringVar(&conn.AccessToken, "access-token", "", "provider access token")

	return cmd
}

func newConnectionsDeactivateCommand() *cobra.Command {
	var configPath string
	var id int

	cmd := &cobra.Command{
		Use:   "deactivate",
		Short: "Deactivate a connection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Deactivate(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deactivated connection %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "agewise.yaml", "config file path")
	cmd.Flags().IntVar(&id, "id", 0, "connection id (required)")
	_ = cmd.MarkFlagRequired("id")

	return cmd
}
