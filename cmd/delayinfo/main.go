// Command delayinfo prints the sampled shape of rolling shutter delay functions.
//
// Usage:
//
//	delayinfo [flags] [function-name ...]
//
// Without arguments it prints info for all known delay functions.
//
// Examples:
//
//	delayinfo quad
//	delayinfo -size 1080 -zero 0.5 cos norm
//	delayinfo -args 4 cos
//	delayinfo -profile -size 12 -steps 6 saw
//	delayinfo -list
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/byewokko/av-processing/video/delayfn"
	"github.com/byewokko/av-processing/video/profile"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("delayinfo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	size := fs.Int("size", 1080, "number of rows to sample")
	zero := fs.Float64("zero", 0, "anchor position in [0,1]")
	fnArgs := fs.String("args", "", "comma separated parameters applied to every named function")
	steps := fs.Int("steps", 0, "maximum delay in frames for -profile")
	showProfile := fs.Bool("profile", false, "print the per-row delay table instead of the summary")
	list := fs.Bool("list", false, "list available delay functions")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: delayinfo [flags] [function-name ...]\n\n")
		fmt.Fprintf(stderr, "Prints the sampled shape of rolling shutter delay functions.\n")
		fmt.Fprintf(stderr, "Without arguments, prints info for all functions.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  delayinfo quad cos\n")
		fmt.Fprintf(stderr, "  delayinfo -size 720 -zero 0.5 -args 3 cos\n")
		fmt.Fprintf(stderr, "  delayinfo -profile -size 12 -steps 6 saw\n")
		fmt.Fprintf(stderr, "  delayinfo -list\n")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if *list {
		for _, n := range delayfn.Names() {
			fmt.Fprintln(stdout, n)
		}
		return 0
	}

	if !(*zero >= 0 && *zero <= 1) {
		fmt.Fprintf(stderr, "error: -zero must be in [0,1]: %v\n", *zero)
		return 2
	}
	if *size <= 0 {
		fmt.Fprintf(stderr, "error: -size must be > 0: %d\n", *size)
		return 2
	}
	if *steps < 0 {
		fmt.Fprintf(stderr, "error: -steps must be >= 0: %d\n", *steps)
		return 2
	}

	params, err := delayfn.ParseArgs(*fnArgs)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}

	names := fs.Args()
	if len(names) == 0 {
		names = delayfn.Names()
		params = nil
	}

	var fns []delayfn.Func
	for _, name := range names {
		fn, err := delayfn.Parse(name, params)
		if err != nil {
			fmt.Fprintf(stderr, "warning: %v (use -list to see available)\n", err)
			continue
		}
		fns = append(fns, fn)
	}
	if len(fns) == 0 {
		fmt.Fprintf(stderr, "error: no matching delay functions\n")
		return 1
	}

	if *showProfile {
		if err := printProfiles(stdout, fns, *zero, *size, *steps); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}
	printSummary(stdout, stderr, fns, *zero, *size)
	return 0
}

type summary struct {
	min, max, scale, atZero float64
	argMax                  int
	err                     error
}

func summarize(fn delayfn.Func, zero float64, size int) summary {
	s := summary{min: math.Inf(1), max: math.Inf(-1)}
	for i := 0; i < size; i++ {
		x := 0.0
		if size > 1 {
			x = float64(i) / float64(size-1)
		}
		v := fn.Eval(x, zero)
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
			s.argMax = i
		}
	}
	s.atZero = fn.Eval(zero, zero)
	p, err := profile.New(fn, zero, size, 1)
	if err != nil {
		s.err = err
		return s
	}
	s.scale = p.Scale()
	return s
}

func printSummary(stdout, stderr io.Writer, fns []delayfn.Func, zero float64, size int) {
	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Function\tSize\tZero\tMin\tMax\tPeak row\tAt zero\tScale\n"); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: failed to write output header: %v\n", err)
		return
	}
	if _, err := fmt.Fprintf(tw, "--------\t----\t----\t---\t---\t--------\t-------\t-----\n"); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: failed to write output header: %v\n", err)
		return
	}

	for _, fn := range fns {
		s := summarize(fn, zero, size)
		scale := strconv.FormatFloat(s.scale, 'f', 6, 64)
		if s.err != nil {
			scale = "degenerate"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%.3f\t%.6f\t%.6f\t%d\t%.6f\t%s\n",
			fn, size, zero, s.min, s.max, s.argMax, s.atZero, scale,
		); err != nil {
			_, _ = fmt.Fprintf(stderr, "error: failed to write output row: %v\n", err)
			return
		}
	}
	if err := tw.Flush(); err != nil {
		_, _ = fmt.Fprintf(stderr, "error: failed to flush output: %v\n", err)
	}
}

func printProfiles(w io.Writer, fns []delayfn.Func, zero float64, size, steps int) error {
	for _, fn := range fns {
		p, err := profile.New(fn, zero, size, steps)
		if err != nil {
			return fmt.Errorf("%s: %w", fn, err)
		}
		table, err := p.Table(size)
		if err != nil {
			return fmt.Errorf("%s: %w", fn, err)
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "# %s zero=%g steps=%d\n", fn, zero, steps)
		fmt.Fprintf(tw, "Row\tDelay\tFrame\tBlend\n")
		for row, d := range table {
			k, frac := profile.Split(d)
			fmt.Fprintf(tw, "%d\t%.4f\t%d\t%.4f\n", row, d, k, frac)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}
