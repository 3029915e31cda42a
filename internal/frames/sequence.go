package frames

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// DefaultDelayMS is used when neither a delay nor a frame rate is known.
const DefaultDelayMS = 100

// CommandEchoLimit caps how many arguments FormatCommand prints.
const CommandEchoLimit = 1000

// Settings are the user-facing encode options.
type Settings struct {
	DelayMS  int // <= 0 means "not requested"
	Lossy    bool
	Lossless bool
	Quality  float64 // 0-100
	Method   int     // 0-6
	Loop     int     // 0 = infinite
	Reverse  bool
	Skip     int // Keep every Skip-th frame; 0 and 1 keep all
}

// Sort returns paths ordered lexically, descending when reverse is set.
// The input slice is left untouched.
func Sort(paths []string, reverse bool) []string {
	sorted := append([]string(nil), paths...)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
	} else {
		sort.Strings(sorted)
	}
	return sorted
}

// Skip keeps the frames at indices 0, k, 2k, ... For k of 0 or 1 every
// frame is kept.
func Skip(paths []string, k int) []string {
	if k <= 1 {
		return append([]string(nil), paths...)
	}
	kept := make([]string, 0, (len(paths)+k-1)/k)
	for i := 0; i < len(paths); i += k {
		kept = append(kept, paths[i])
	}
	return kept
}

// ResolveDelay picks the per-frame delay in milliseconds. A known frame
// rate wins unless the user asked for a delay.
func ResolveDelay(fps, requestedMS int) int {
	if fps > 0 && requestedMS <= 0 {
		return int(math.Round(1000 / float64(fps)))
	}
	if requestedMS > 0 {
		return requestedMS
	}
	return DefaultDelayMS
}

// BuildJob orders paths, applies frame skipping and attaches the uniform
// per-frame settings.
func BuildJob(paths []string, fps int, s Settings, output string) Job {
	ordered := Skip(Sort(paths, s.Reverse), s.Skip)
	delay := ResolveDelay(fps, s.DelayMS)

	job := Job{
		Loop:   s.Loop,
		Frames: make([]Frame, len(ordered)),
		Output: output,
	}
	for i, p := range ordered {
		job.Frames[i] = Frame{
			Path:     p,
			DelayMS:  delay,
			Lossy:    s.Lossy,
			Lossless: s.Lossless,
			Quality:  s.Quality,
			Method:   s.Method,
		}
	}
	return job
}

// BuildArgs renders job as img2webp arguments:
//
//	-loop N {-d D [-lossy] [-lossless] -q Q -m M path}... -o output
func BuildArgs(job Job) []string {
	args := make([]string, 0, 2+len(job.Frames)*9+2)
	args = append(args, "-loop", strconv.Itoa(job.Loop))

	for _, f := range job.Frames {
		args = append(args, "-d", strconv.Itoa(f.DelayMS))
		if f.Lossy {
			args = append(args, "-lossy")
		}
		if f.Lossless {
			args = append(args, "-lossless")
		}
		args = append(args,
			"-q", strconv.FormatFloat(f.Quality, 'f', -1, 64),
			"-m", strconv.Itoa(f.Method),
			f.Path,
		)
	}

	return append(args, "-o", job.Output)
}

// FormatCommand renders a command line for display, printing at most
// limit arguments followed by " ..." when more remain.
func FormatCommand(tool string, args []string, limit int) string {
	var b strings.Builder
	b.WriteString(tool)
	for i, a := range args {
		if limit > 0 && i >= limit {
			b.WriteString(" ...")
			break
		}
		b.WriteByte(' ')
		b.WriteString(a)
	}
	return b.String()
}

// Validate checks the ranges img2webp accepts.
func (s Settings) Validate() error {
	if s.Quality < 0 || s.Quality > 100 {
		return usageError("quality must be between 0 and 100, got %g", s.Quality)
	}
	if s.Method < 0 || s.Method > 6 {
		return usageError("method must be between 0 and 6, got %d", s.Method)
	}
	if s.Loop < 0 {
		return usageError("loop count must not be negative, got %d", s.Loop)
	}
	if s.Skip < 0 {
		return usageError("skip must not be negative, got %d", s.Skip)
	}
	return nil
}
