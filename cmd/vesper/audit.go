package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vesper-hq/vesper/pkg/audit"
	"vesper-hq/vesper/pkg/config"
)

var auditFlags struct {
	limit int
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the audit trail",
	Long:  `Query the lifecycle and admission events persisted by a running server.`,
}

var auditRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recent audit events",
	RunE:  auditRecent,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show event counts per type",
	RunE:  auditStats,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditRecentCmd)
	auditCmd.AddCommand(auditStatsCmd)

	auditRecentCmd.Flags().IntVar(&auditFlags.limit, "limit", 20, "maximum number of events")
}

// openAuditStore opens the store at the path the config file points to.
func openAuditStore() (*audit.Store, error) {
	cfg, err := config.LoadFileWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	auditCfg := audit.DefaultConfig()
	auditCfg.Path = cfg.Audit.Path
	return audit.NewStore(auditCfg)
}

func auditRecent(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	events, err := store.Recent(context.Background(), auditFlags.limit)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Println("no audit events recorded")
		return nil
	}

	for _, e := range events {
		line := fmt.Sprintf("%s  %-18s", e.OccurredAt.Format(time.RFC3339), e.Type)
		if e.URI != "" {
			line += "  " + e.URI
		}
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		fmt.Println(line)
	}
	return nil
}

func auditStats(cmd *cobra.Command, args []string) error {
	store, err := openAuditStore()
	if err != nil {
		return err
	}
	defer store.Close()

	counts, err := store.CountByType(context.Background())
	if err != nil {
		return err
	}

	if len(counts) == 0 {
		fmt.Println("no audit events recorded")
		return nil
	}

	for _, eventType := range []string{audit.EventServerStarted, audit.EventServerStopped, audit.EventRequestRejected} {
		if count, ok := counts[eventType]; ok {
			fmt.Printf("%-18s %d\n", eventType, count)
		}
	}
	return nil
}
