// Package main implements the sendtime CLI for computing optimal send times.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/journeykit/sendtime/pkg/explain"
	"github.com/journeykit/sendtime/pkg/sendtime"
	"github.com/journeykit/sendtime/pkg/timezone"
	"github.com/journeykit/sendtime/pkg/window"
)

var (
	countryCode    = flag.String("country", "", "ISO 3166-1 alpha-2 country code of the contact")
	entryTime      = flag.String("entry", "", "Entry time in RFC 3339 (default: now)")
	windowsFlag    = flag.String("windows", "", "Send windows as start-end hour pairs, e.g. '9-12,13-17' (default: built-in)")
	skipWeekends   = flag.Bool("skip-weekends", true, "Skip Saturday and Sunday")
	skipHolidays   = flag.Bool("skip-holidays", true, "Skip public holidays in the contact's country")
	defaultCountry = flag.String("default-country", "", "Country substituted when the contact's code is unknown")
	cacheDir       = flag.String("cache-dir", "", "Holiday cache directory (or set CACHE_DIR)")
	noCache        = flag.Bool("no-cache", false, "Disable holiday cache persistence")
	jsonOutput     = flag.Bool("json", false, "Emit the full result as JSON")
	explainFlag    = flag.Bool("explain", false, "Ask Gemini for a plain-language explanation (needs GEMINI_API_KEY)")
	geminiAPIKey   = flag.String("gemini-key", "", "Gemini API key (or set GEMINI_API_KEY)")
	geminiModel    = flag.String("gemini-model", "", "Gemini model to use (or set GEMINI_MODEL)")
	verbose        = flag.Bool("verbose", false, "Enable verbose logging")
	version        = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("sendtime CLI v1.0.0")
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <subscriber-key>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelError
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *geminiAPIKey == "" {
		*geminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if *geminiModel == "" {
		*geminiModel = os.Getenv("GEMINI_MODEL")
	}
	if *cacheDir == "" {
		*cacheDir = os.Getenv("CACHE_DIR")
	}

	contact := sendtime.Contact{
		SubscriberKey: args[0],
		CountryCode:   *countryCode,
	}
	if *entryTime != "" {
		t, err := time.Parse(time.RFC3339, *entryTime)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -entry value %q: %v\n", *entryTime, err)
			os.Exit(1)
		}
		contact.EntryTime = t
	}

	windows, err := parseWindows(*windowsFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -windows value: %v\n", err)
		os.Exit(1)
	}
	cfg := sendtime.ActivityConfig{
		TimeWindows:  windows,
		SkipWeekends: *skipWeekends,
		SkipHolidays: *skipHolidays,
	}

	opts := []sendtime.Option{}
	if *defaultCountry != "" {
		opts = append(opts, sendtime.WithDefaultCountry(*defaultCountry))
	}
	if *noCache {
		opts = append(opts, sendtime.WithNoCache())
	} else if *cacheDir != "" {
		opts = append(opts, sendtime.WithCacheDir(*cacheDir))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	calc, err := sendtime.New(ctx, logger, opts...)
	if err != nil {
		logger.Error("calculator setup failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := calc.Close(); err != nil {
			logger.Error("failed to close calculator", "error", err)
		}
	}()

	result := calc.Calculate(ctx, contact, cfg)

	if *jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			logger.Error("failed to encode result", "error", err)
			os.Exit(1)
		}
	} else {
		printResult(result)
	}

	if *explainFlag {
		printExplanation(ctx, logger, result)
	}

	if !result.Success {
		os.Exit(1)
	}
}

// parseWindows parses "9-12,13-17" into enabled windows.
func parseWindows(s string) ([]window.Window, error) {
	if s == "" {
		return nil, nil
	}
	var windows []window.Window
	for _, part := range strings.Split(s, ",") {
		bounds := strings.SplitN(strings.TrimSpace(part), "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("window %q is not a start-end pair", part)
		}
		start, err := strconv.Atoi(bounds[0])
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", part, err)
		}
		end, err := strconv.Atoi(bounds[1])
		if err != nil {
			return nil, fmt.Errorf("window %q: %w", part, err)
		}
		windows = append(windows, window.Window{StartHour: start, EndHour: end, Enabled: true})
	}
	return windows, nil
}

func printResult(result sendtime.Result) {
	fmt.Printf("\n📬 Subscriber: %s\n", result.SubscriberKey)
	fmt.Println(strings.Repeat("─", 50))

	if !result.Success {
		color.New(color.FgRed).Printf("✗ Calculation failed (%s)\n", result.ErrorCategory)
		fmt.Printf("  %s\n", result.Error)
		return
	}

	fmt.Printf("🌍 Country:       %s (%s)", result.EffectiveCountry, result.Timezone)
	if result.FallbackUsed {
		color.New(color.FgYellow).Print("  [fallback]")
	}
	fmt.Println()
	fmt.Printf("🕐 Entry time:    %s\n", result.OriginalTime.Format(time.RFC3339))
	color.New(color.FgGreen).Printf("✉️  Send time:     %s (reference clock, %s)\n",
		result.OptimalSendTime.Format("Mon 2006-01-02 15:04"), timezone.ReferenceZone)

	if len(result.Adjustments) > 0 {
		fmt.Println("\n🔧 Adjustments:")
		for _, adj := range result.Adjustments {
			line := fmt.Sprintf("  • %-24s %s", adj.Type, adj.Reason)
			if adj.DaysAdjusted > 0 {
				line += fmt.Sprintf(" (+%dd)", adj.DaysAdjusted)
			}
			switch adj.Type {
			case sendtime.AdjustTimezoneFallback:
				color.New(color.FgYellow).Println(line)
			case sendtime.AdjustWeekend, sendtime.AdjustHoliday:
				color.New(color.FgCyan).Println(line)
			default:
				fmt.Println(line)
			}
		}
	} else {
		fmt.Println("\n✓ No adjustments needed")
	}
	fmt.Println()
}

func printExplanation(ctx context.Context, logger *slog.Logger, result sendtime.Result) {
	if *geminiAPIKey == "" {
		fmt.Fprintln(os.Stderr, "-explain requires a Gemini API key (flag -gemini-key or GEMINI_API_KEY)")
		return
	}
	explainer, err := explain.New(*geminiAPIKey, *geminiModel, logger)
	if err != nil {
		logger.Error("explainer setup failed", "error", err)
		return
	}
	text, err := explainer.Explain(ctx, result)
	if err != nil {
		logger.Warn("explanation unavailable", "error", err)
		return
	}
	fmt.Println("💭 Explanation:")
	fmt.Println(text)
	fmt.Println()
}
