package replay

import "os"

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`FormCoach Replay Tool
=====================

Streams a synthetic workout into a running FormCoach service and prints
the session report.

Usage:
  go run ./cmd/replay [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -exercise string
        Exercise to perform (default "squats")
  -reps int
        Repetitions, or seconds for the plank (default 5)
  -async
        Submit frames through /frames/async
  -interval duration
        Pause between frames (default 0)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every frame result
  -help
        Show this help message

Examples:
  go run ./cmd/replay -exercise pushups -reps 10
  go run ./cmd/replay -exercise plank -reps 20 -interval 100ms
  go run ./cmd/replay -async -reps 50
`)
}
