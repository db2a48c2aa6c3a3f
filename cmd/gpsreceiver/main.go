// Command gpsreceiver runs the GPS L1 C/A software-defined receiver pipeline
// against either a recorded capture file or a live rtl_tcp tuner.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/pflag"

	"github.com/kpelc/gogps/internal/config"
	"github.com/kpelc/gogps/internal/receiver"
	"github.com/kpelc/gogps/internal/source"
	"github.com/kpelc/gogps/internal/status"
	"github.com/kpelc/gogps/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		filePath    = pflag.StringP("file", "f", "", "replay samples from PATH (interleaved float32 I/Q, no header)")
		startUnix   = pflag.Int64P("timestamp", "t", 0, "UNIX seconds of the file's first sample (file mode only)")
		rtlSDR      = pflag.Bool("rtl-sdr", false, "stream samples live from an rtl_tcp daemon")
		rtlAddr     = pflag.String("rtl-addr", "", "rtl_tcp address, default 127.0.0.1:1234")
		statusAddr  = pflag.String("addr", "localhost:8080", "status HTTP bind address (file mode only)")
		logLevel    = pflag.String("log-level", "info", "debug, info, warn, or error")
		help        = pflag.BoolP("help", "h", false, "display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "gpsreceiver - a software-defined GPS L1 C/A receiver.\n\n")
		fmt.Fprintf(os.Stderr, "Usage: gpsreceiver (-f PATH -t UNIX_SECONDS | --rtl-sdr)\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help {
		pflag.Usage()
		return 1
	}

	if (*filePath == "") == !*rtlSDR {
		fmt.Fprintln(os.Stderr, "error: exactly one of -f or --rtl-sdr is required")
		return 1
	}

	logger := telemetry.New(telemetry.ParseLevel(*logLevel))

	src, firstSampleTimestamp, err := openSource(*filePath, *startUnix, *rtlSDR, *rtlAddr)
	if err != nil {
		logger.Error("%v", &receiver.SampleSourceError{Err: err})
		return 2
	}
	if closer, ok := src.(io.Closer); ok {
		defer closer.Close()
	}

	pipeline, err := receiver.NewPipeline(config.Default(), logger, firstSampleTimestamp)
	if err != nil {
		logger.Error("failed to build pipeline: %v", err)
		return 2
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if !*rtlSDR {
		go func() {
			if err := status.ListenAndServe(*statusAddr, pipeline, logger); err != nil {
				logger.Warn("status server stopped: %v", err)
			}
		}()
	}

	if err := runPipeline(ctx, pipeline, src, logger); err != nil {
		if errors.Is(err, context.Canceled) {
			return 0
		}
		logger.Error("%v", &receiver.SampleSourceError{Err: err})
		return 2
	}
	return 0
}

// openSource constructs the one Sample Source the CLI flags selected.
func openSource(filePath string, startUnix int64, rtlSDR bool, rtlAddr string) (source.Source, time.Time, error) {
	if rtlSDR {
		src, err := source.NewRTLSDRSource(rtlAddr)
		if err != nil {
			return nil, time.Time{}, err
		}
		return src, src.TimestampOfFirstSample(), nil
	}

	start := time.Unix(startUnix, 0).UTC()
	src, err := source.NewFileSource(filePath, start)
	if err != nil {
		return nil, time.Time{}, err
	}
	return src, src.TimestampOfFirstSample(), nil
}

// runPipeline pulls samples one millisecond at a time until the source is
// exhausted (file mode) or the context is cancelled (both modes).
func runPipeline(ctx context.Context, pipeline *receiver.Pipeline, src source.Source, logger *telemetry.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		samples, err := src.NextSamples(config.SamplesPerMillisecond)
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			logger.Info("sample source exhausted")
			return nil
		}
		if err != nil {
			return err
		}

		if tickErr := pipeline.Tick(ctx, samples); tickErr != nil {
			return tickErr
		}
	}
}
