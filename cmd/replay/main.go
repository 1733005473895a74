package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/okian/formcoach/internal/domain/exercise"
	"github.com/okian/formcoach/internal/replay"
	"github.com/okian/formcoach/pkg/logger"
)

// Default configuration constants.
const (
	defaultReps       = 5
	defaultTimeout    = 10 * time.Second
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		exID     = flag.String("exercise", exercise.Squats, "Exercise to perform")
		reps     = flag.Int("reps", defaultReps, "Repetitions, or seconds for the plank")
		async    = flag.Bool("async", false, "Submit frames through /frames/async")
		interval = flag.Duration("interval", 0, "Pause between frames")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Log every frame result")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(&replay.Config{
		BaseURL:  *baseURL,
		Exercise: *exID,
		Reps:     *reps,
		Async:    *async,
		Interval: *interval,
		Timeout:  *timeout,
		Verbose:  *verbose,
	}); err != nil {
		_, _ = os.Stderr.WriteString("replay failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// run replays the workout and prints the report, even a partial one.
func run(cfg *replay.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	report, _, err := replay.Run(ctx, cfg)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(report)
	return err
}
