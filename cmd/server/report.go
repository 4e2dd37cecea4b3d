package main

import (
	"context"
	"fmt"

	"support-assistant/internal/analytics"
	"support-assistant/internal/notify"
)

// reportJob analyzes every partition under dir and hands the summary to n.
func reportJob(dir string, n notify.Notifier) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		records, err := analytics.Load(dir)
		if err != nil {
			return fmt.Errorf("load interactions: %w", err)
		}
		summary := "📊 Daily support report\n\n" + analytics.Analyze(records).Summary()
		if err := n.Send(ctx, summary); err != nil {
			return fmt.Errorf("send report: %w", err)
		}
		return nil
	}
}
