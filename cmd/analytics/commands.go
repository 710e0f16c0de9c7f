package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-analytics/internal/analytics"
	"github.com/rxtech-lab/argo-analytics/internal/api"
	"github.com/rxtech-lab/argo-analytics/internal/cache"
	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/metrics"
	"github.com/rxtech-lab/argo-analytics/internal/report"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// computeAction runs the selected metrics (all of them by default) and
// writes each result table into a new report folder.
func computeAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	frame, err := a.frame(ctx, cmd.StringSlice("account"))
	if err != nil {
		return err
	}

	req := analytics.Request{
		Grouped: !cmd.Bool("ungrouped"),
		Group: metrics.GroupOptions{
			ByAccount: cmd.Bool("by-account"),
			BySymbol:  cmd.Bool("by-symbol"),
		},
	}

	var tables []types.Table

	if names := cmd.StringSlice("metric"); len(names) > 0 {
		for _, name := range names {
			table, err := a.service.Compute(ctx, frame, name, req)
			if err != nil {
				return err
			}

			tables = append(tables, table)
		}
	} else {
		tables, err = a.service.ComputeAll(ctx, frame, req, progressCallbacks(cmd.Bool("quiet")))
		if err != nil {
			return err
		}
	}

	run, err := report.NewRun(cmd.String("out"), report.Format(cmd.String("format")))
	if err != nil {
		return err
	}

	paths, err := run.WriteTables(tables)
	if err != nil {
		run.Close()

		return err
	}

	var summaryPath string

	if cmd.Bool("summary") {
		summaryPath, err = run.WriteSummaries(a.service.Summary(ctx, frame, req.Group.ByAccount))
		if err != nil {
			run.Close()

			return err
		}
	}

	if err := run.Finish(time.Now().UTC(), paths, summaryPath); err != nil {
		return err
	}

	a.log.Info("Report written",
		zap.String("run_id", run.ID),
		zap.String("dir", run.Dir),
		zap.Int("tables", len(paths)),
	)

	fmt.Fprintln(cmd.Root().Writer, run.Dir)

	return nil
}

// progressCallbacks drives a progress bar from the metric lifecycle.
func progressCallbacks(quiet bool) analytics.Callbacks {
	if quiet {
		return analytics.Callbacks{}
	}

	var bar *progressbar.ProgressBar

	onStart := analytics.OnMetricStartCallback(func(index int, name string, total int) error {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Computing metrics"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		bar.Describe(name)

		return nil
	})

	onEnd := analytics.OnMetricEndCallback(func(index int, name string, table types.Table) {
		_ = bar.Add(1)
	})

	return analytics.Callbacks{OnMetricStart: &onStart, OnMetricEnd: &onEnd}
}

func summaryAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	frame, err := a.frame(ctx, cmd.StringSlice("account"))
	if err != nil {
		return err
	}

	summaries := a.service.Summary(ctx, frame, cmd.Bool("per-account"))

	if out := cmd.String("out"); out != "" {
		return report.WriteSummaryYAML(out, summaries)
	}

	data, err := yaml.Marshal(summaries)
	if err != nil {
		return errors.Wrap(errors.ErrCodeReportWriteFailed, "failed to marshal summary", err)
	}

	_, err = cmd.Root().Writer.Write(data)

	return err
}

func balanceAction(ctx context.Context, cmd *cli.Command) error {
	key, err := balanceKey(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	var accounts []string
	if key.AccountID.IsSome() {
		accounts = []string{key.AccountID.Unwrap()}
	}

	frame, err := a.frame(ctx, accounts)
	if err != nil {
		return err
	}

	result, err := a.service.Balance(ctx, frame, key)
	if err != nil {
		return err
	}

	a.log.Debug("Balance resolved", zap.String("key", key.String()), zap.Int("cache_hits", result.Hits))

	encoder := json.NewEncoder(cmd.Root().Writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(result)
}

func invalidateAction(ctx context.Context, cmd *cli.Command) error {
	key, err := balanceKey(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	if a.cache == nil {
		return errors.Newf(errors.ErrCodeInvalidConfiguration,
			"cache is not enabled; set cache.enabled or %s", config.EnvCacheDSN)
	}

	filter := cache.Filter{BalanceKey: key, Exact: cmd.Bool("exact")}

	removed, err := a.service.InvalidateBalance(ctx, filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "removed %d cached rows\n", removed)

	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := newApp(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	addr := a.cfg.Server.Addr
	if cmd.IsSet("addr") {
		addr = cmd.String("addr")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return api.NewServer(a.service, a.source, a.log).ListenAndServe(ctx, addr)
}

func metricsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	for _, name := range metrics.NewCatalogue(cfg.CatalogueOptions()).Names() {
		fmt.Fprintln(cmd.Root().Writer, name)
	}

	return nil
}

func schemaAction(ctx context.Context, cmd *cli.Command) error {
	cfg := config.Default()

	schema, err := cfg.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

// balanceKey builds the cache key from the key flags. Unset flags leave
// the component absent.
func balanceKey(cmd *cli.Command) (types.BalanceKey, error) {
	var key types.BalanceKey

	if cmd.IsSet("key-account") {
		key.AccountID = optional.Some(cmd.String("key-account"))
	}

	if cmd.IsSet("symbol") {
		key.Symbol = optional.Some(cmd.String("symbol"))
	}

	if cmd.IsSet("direction") {
		direction := types.Direction(strings.ToUpper(cmd.String("direction")))
		if direction != types.DirectionLong && direction != types.DirectionShort {
			return key, errors.Newf(errors.ErrCodeInvalidParameter, "invalid direction %q", cmd.String("direction"))
		}

		key.Direction = optional.Some(direction)
	}

	if cmd.IsSet("asset-type") {
		key.AssetType = optional.Some(types.ParseAssetType(cmd.String("asset-type")))
	}

	if cmd.IsSet("hour") {
		hour := int(cmd.Int("hour"))
		if hour < 0 || hour > 23 {
			return key, errors.Newf(errors.ErrCodeInvalidParameter, "hour %d out of range 0-23", hour)
		}

		key.Hour = optional.Some(hour)
	}

	if cmd.IsSet("weekday") {
		weekday := int(cmd.Int("weekday"))
		if weekday < 0 || weekday > 6 {
			return key, errors.Newf(errors.ErrCodeInvalidParameter, "weekday %d out of range 0-6", weekday)
		}

		key.Weekday = optional.Some(weekday)
	}

	return key, nil
}
