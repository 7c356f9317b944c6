package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"meeting-notifier/internal/config"
	"meeting-notifier/internal/db"
	"meeting-notifier/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Admin tool for the meeting-notifier dispatch log",
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newListCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the dispatch_log table and its indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()
			return client.Migrate(cmd.Context(), logger.New(cfg.AppEnv, cfg.LogLevel))
		},
	}
}

func newListCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the most recent dispatch records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			_, client, err := connect()
			if err != nil {
				return err
			}
			defer client.Close()

			records, err := client.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dispatch records found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tMEETING\tOUTCOME\tRECIPIENTS\tPREVIEW")
			fmt.Fprintln(w, "--\t-------\t-------\t-------\t----------\t-------")
			for _, r := range records {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.MeetingID, r.Outcome,
					strings.Join(r.Recipients, ","), r.PreviewURL)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	return cmd
}

func connect() (*config.Config, *db.Client, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: .env file not found, reading configuration from the environment")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBDSN == "" {
		return nil, nil, fmt.Errorf("DB_DSN is not set")
	}
	client, err := db.NewClient(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return cfg, client, nil
}
