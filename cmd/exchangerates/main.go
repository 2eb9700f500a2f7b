package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"service-exchangerates/internal/logger"
	"service-exchangerates/pkg/exchangerates"
)

const usage = `usage: exchangerates [flags] <command> [args]

commands:
  latest [FROM] [TO]                  latest rates, FROM defaults to EUR
  historical DATE [FROM] [TO]         rates on DATE (YYYY-MM-DD)
  rate FROM TO [DATE]                 single pair rate
  convert AMOUNT FROM TO [DATE]       convert AMOUNT
  currencies                          supported currency symbols
  timeseries START END FROM TO        daily rates between START and END
  fluctuation START END FROM TO       change between START and END

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	_ = godotenv.Load()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("exchangerates", flag.ContinueOnError)
	fs.SetOutput(stderr)
	apiKey := fs.String("key", "", "API key (default $"+exchangerates.EnvAPIKey+")")
	baseURL := fs.String("base-url", "", "API base URL (default $"+exchangerates.EnvBaseURL+" or "+exchangerates.DefaultBaseURL+")")
	timeout := fs.Duration("timeout", 20*time.Second, "HTTP timeout")
	verbose := fs.Bool("v", false, "log requests")
	fs.Usage = func() {
		_, _ = fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	if *verbose {
		logger.SetLevel("debug")
	}
	client := exchangerates.New(*apiKey, *baseURL,
		exchangerates.WithTimeout(*timeout),
		exchangerates.WithLogger(logger.New("exchangerates")),
	)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "latest":
		resp, err := client.Latest(ctx, arg(rest, 0), arg(rest, 1))
		if err != nil {
			return err
		}
		printRates(stdout, resp)
	case "historical":
		if len(rest) < 1 {
			return usageErr(stderr, "historical needs DATE")
		}
		resp, err := client.Historical(ctx, rest[0], arg(rest, 1), arg(rest, 2))
		if err != nil {
			return err
		}
		printRates(stdout, resp)
	case "rate":
		if len(rest) < 2 {
			return usageErr(stderr, "rate needs FROM TO")
		}
		resp, err := client.ExchangeRate(ctx, rest[0], rest[1], arg(rest, 2))
		if err != nil {
			return err
		}
		rate, ok := resp.Rates()[rest[1]]
		if !ok {
			return fmt.Errorf("%w for %s", exchangerates.ErrRateNotFound, rest[1])
		}
		_, _ = fmt.Fprintf(stdout, "%s to %s rate: %v (date %s)\n", rest[0], rest[1], rate, resp.Date())
	case "convert":
		if len(rest) < 3 {
			return usageErr(stderr, "convert needs AMOUNT FROM TO")
		}
		amount, err := strconv.ParseFloat(rest[0], 64)
		if err != nil {
			return usageErr(stderr, "invalid amount "+strconv.Quote(rest[0]))
		}
		conv, err := client.Convert(ctx, amount, rest[1], rest[2], arg(rest, 3))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(stdout, "%v %s = %s %s\n", conv.Amount, conv.From, conv.Decimal().String(), conv.To)
		_, _ = fmt.Fprintf(stdout, "rate: %v\ndate: %s\n", conv.Rate, conv.Date)
	case "currencies":
		resp, err := client.Currencies(ctx)
		if err != nil {
			return err
		}
		symbols := resp.Symbols()
		for _, code := range sortedKeys(symbols) {
			_, _ = fmt.Fprintf(stdout, "%s: %s\n", code, symbols[code])
		}
	case "timeseries":
		if len(rest) < 4 {
			return usageErr(stderr, "timeseries needs START END FROM TO")
		}
		resp, err := client.TimeSeries(ctx, rest[0], rest[1], rest[2], rest[3])
		if err != nil {
			return err
		}
		series := resp.TimeSeries()
		for _, day := range sortedKeys(series) {
			for _, code := range sortedKeys(series[day]) {
				_, _ = fmt.Fprintf(stdout, "%s %s %v\n", day, code, series[day][code])
			}
		}
	case "fluctuation":
		if len(rest) < 4 {
			return usageErr(stderr, "fluctuation needs START END FROM TO")
		}
		resp, err := client.Fluctuation(ctx, rest[0], rest[1], rest[2], rest[3])
		if err != nil {
			return err
		}
		fl := resp.Fluctuations()
		for _, code := range sortedKeys(fl) {
			f := fl[code]
			_, _ = fmt.Fprintf(stdout, "%s %v -> %v (%+v, %+.2f%%)\n", code, f.StartRate, f.EndRate, f.Change, f.ChangePct)
		}
	default:
		return usageErr(stderr, "unknown command "+strconv.Quote(cmd))
	}
	return nil
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, errUsage):
		return 2
	case errors.Is(err, exchangerates.ErrAuthentication):
		_, _ = fmt.Fprintf(stderr, "Authentication error: %v\n", err)
	case errors.Is(err, exchangerates.ErrRateLimit):
		_, _ = fmt.Fprintf(stderr, "Rate limit exceeded: %v\n", err)
	case errors.Is(err, exchangerates.ErrServer):
		_, _ = fmt.Fprintf(stderr, "Server error: %v\n", err)
	case errors.Is(err, exchangerates.ErrRequest):
		_, _ = fmt.Fprintf(stderr, "Request error: %v\n", err)
	default:
		_, _ = fmt.Fprintf(stderr, "Unexpected error: %v\n", err)
	}
	return 1
}

func printRates(w io.Writer, resp *exchangerates.Payload) {
	_, _ = fmt.Fprintf(w, "base: %s\ndate: %s\n", resp.Base(), resp.Date())
	if resp.Historical() {
		_, _ = fmt.Fprintln(w, "historical: true")
	}
	rates := resp.Rates()
	for _, code := range sortedKeys(rates) {
		_, _ = fmt.Fprintf(w, "%s %v\n", code, rates[code])
	}
}

func usageErr(stderr io.Writer, msg string) error {
	_, _ = fmt.Fprintln(stderr, msg)
	return errUsage
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
