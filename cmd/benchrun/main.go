// Command benchrun prints the skirmish benchmark suite, per-profile search
// timings and perft counts in one report.
//
// Usage: go run ./cmd/benchrun
package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

const kiwipete = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"

// goTool runs one go subcommand from the module root and echoes its output.
// The exit code of the subcommand is returned.
func goTool(args ...string) int {
	out, err := exec.Command("go", args...).CombinedOutput()
	os.Stdout.Write(out)
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &exitErr):
		return exitErr.ExitCode()
	}
	fmt.Fprintf(os.Stderr, "benchrun: go %v: %v\n", args, err)
	return 1
}

func skirmish(args ...string) int {
	return goTool(append([]string{"run", "./cmd/skirmish", "--log-level", "error"}, args...)...)
}

func main() {
	fmt.Println("Columns: BENCHMARK  N  ns/op  B/op  allocs/op")
	if code := goTool("test", "./bench", "-run", "^$", "-bench", ".", "-benchmem", "-benchtime=1s"); code != 0 {
		os.Exit(code)
	}

	fmt.Println("\nSearch timings:")
	for _, profile := range []string{"gen1", "gen2", "gen3", "gen4"} {
		skirmish("search", "--profile", profile, "--depth", "2")
	}

	fmt.Println("\nPerft:")
	skirmish("perft", "--depth", "4")
	skirmish("perft", "--depth", "3", "--fen", kiwipete)
}
