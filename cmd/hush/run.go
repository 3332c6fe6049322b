package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hush/internal/history"
	"hush/internal/logging"
	"hush/internal/media"
	"hush/internal/pipeline"
)

func runPipeline(cmd *cobra.Command, cctx *commandContext, inputPath, outputPath string, noDenoise bool) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := cctx.ensureLogger()
	if err != nil {
		return err
	}

	media.BridgeLogs(logger)
	defer media.ResetLogs()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := pipeline.Options{
		InputPath:     inputPath,
		OutputPath:    outputPath,
		BitRate:       cfg.Output.BitRate,
		Channels:      cfg.Output.Channels,
		Denoise:       cfg.Denoise.Enabled && !noDenoise,
		SuppressionDB: cfg.Denoise.SuppressionDB,
	}

	res, runErr := pipeline.Run(ctx, opts, logger)
	recordRun(cctx, opts, res, runErr)
	if runErr != nil {
		return runErr
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Processing completed.")
	return nil
}

// recordRun persists the outcome to the history store. Failures here are
// logged and swallowed; history is never allowed to fail a run.
func recordRun(cctx *commandContext, opts pipeline.Options, res *pipeline.Result, runErr error) {
	cfg, err := cctx.ensureConfig()
	if err != nil || !cfg.History.Enabled {
		return
	}
	logger, err := cctx.ensureLogger()
	if err != nil {
		return
	}

	store, err := history.Open(cfg)
	if err != nil {
		logger.Warn("open history store", logging.Error(err))
		return
	}
	defer store.Close()

	rec := history.Run{
		InputPath:  opts.InputPath,
		OutputPath: opts.OutputPath,
		Status:     history.StatusCompleted,
	}
	if res != nil {
		rec.RunID = res.RunID
		rec.Codec = res.Codec
		rec.SampleRate = res.SampleRate
		rec.Channels = res.OutputChannels
		rec.PacketsRead = res.PacketsRead
		rec.FramesDecoded = res.FramesDecoded
		rec.PacketsWritten = res.PacketsWritten
		rec.Warnings = res.Warnings
		rec.ElapsedMS = res.Elapsed.Milliseconds()
	}
	if runErr != nil {
		rec.Status = history.StatusFailed
		rec.Stage = media.StageLabel(runErr)
		rec.ErrorMessage = runErr.Error()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := store.Record(ctx, rec); err != nil {
		logger.Warn("record run history", logging.Error(err))
		return
	}
	if _, err := store.Prune(ctx, cfg.History.Keep); err != nil {
		logger.Warn("prune run history", logging.Error(err))
	}
}
