package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/i474232898/covid-dashboard/internal/covid"
)

var (
	timelineCmd = &cobra.Command{
		Use:   "timeline <country>",
		Short: "Print the aligned cases/deaths/recovered timeline of a country",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimeline,
	}

	compareCmd = &cobra.Command{
		Use:   "compare <country>...",
		Short: "Print the summaries of several countries side by side",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompare,
	}
)

func runTimeline(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.HTTPTimeout)
	defer cancel()

	view, err := a.service.Timeline(ctx, args[0])
	if errors.Is(err, covid.ErrNotFound) {
		return fmt.Errorf("no timeline data for %s", args[0])
	}
	if err != nil {
		return err
	}
	return printJSON(cmd, view)
}

func runCompare(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.HTTPTimeout)
	defer cancel()

	set, err := a.service.SetComparison(ctx, args)
	if err != nil {
		return err
	}
	return printJSON(cmd, set)
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
