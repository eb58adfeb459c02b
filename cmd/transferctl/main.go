package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	grpcadapter "github.com/razecmarketing/schedbank/internal/adapter/grpc"
	"github.com/razecmarketing/schedbank/internal/config"
	"github.com/razecmarketing/schedbank/internal/domain"
	"github.com/razecmarketing/schedbank/internal/logger"
	"github.com/razecmarketing/schedbank/internal/usecase/scheduling"
)

const usage = `usage: transferctl [-addr host:port] [-token token] <command> [flags]

commands:
  schedule -from ACCOUNT -to ACCOUNT -amount AMOUNT -date YYYY-MM-DD
  update   -id ID -from ACCOUNT -to ACCOUNT -amount AMOUNT -date YYYY-MM-DD
  list
  get      ID
  delete   ID
  clear
  quote    -amount AMOUNT -date YYYY-MM-DD
  tiers
`

// transferService is the part of the scheduling service the commands drive
type transferService interface {
	Schedule(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error)
	List(ctx context.Context) ([]*domain.Transfer, error)
	Get(ctx context.Context, id string) (*domain.Transfer, error)
	Update(ctx context.Context, req domain.TransferRequest) (*domain.Transfer, error)
	Delete(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
	QuoteFee(amount domain.Money, date time.Time) (domain.FeeQuote, error)
	FeeTiers() []domain.FeeTier
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "transferctl: %v\n", err)
		os.Exit(1)
	}

	global := flag.NewFlagSet("transferctl", flag.ExitOnError)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	addr := global.String("addr", dialAddr(cfg.GRPC.Addr), "ledger gRPC address")
	token := global.String("token", cfg.GRPC.AuthToken, "ledger auth token")
	verbose := global.Bool("v", false, "log collaborator calls to stderr")
	_ = global.Parse(os.Args[1:])

	logCfg := logger.DefaultConfig()
	logCfg.Output = "stderr"
	logCfg.Level = "error"
	if *verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	conn, err := grpcadapter.Dial(*addr, *token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "transferctl: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	service := scheduling.NewSchedulingService(grpcadapter.NewClient(conn), nil, log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := execute(ctx, service, global.Args(), os.Stdout, time.Now()); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "transferctl: %s\n", describe(err))
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("invalid usage")

// execute runs one command and writes its JSON result to out
func execute(ctx context.Context, service transferService, args []string, out io.Writer, now time.Time) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "schedule", "update":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		id := fs.String("id", "", "transfer id")
		from := fs.String("from", "", "source account")
		to := fs.String("to", "", "target account")
		amount := fs.String("amount", "", "amount, e.g. 100.50")
		date := fs.String("date", "", "transfer date, YYYY-MM-DD")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		req := domain.TransferRequest{
			ID:            *id,
			SourceAccount: *from,
			TargetAccount: *to,
			Amount:        *amount,
			TransferDate:  *date,
		}
		var (
			transfer *domain.Transfer
			err      error
		)
		if cmd == "schedule" {
			transfer, err = service.Schedule(ctx, req)
		} else {
			transfer, err = service.Update(ctx, req)
		}
		if err != nil {
			return err
		}
		return writeJSON(out, transfer.Summary(now))

	case "list":
		transfers, err := service.List(ctx)
		if err != nil {
			return err
		}
		summaries := make([]domain.TransferSummary, 0, len(transfers))
		for _, t := range transfers {
			summaries = append(summaries, t.Summary(now))
		}
		return writeJSON(out, summaries)

	case "get":
		if len(rest) != 1 {
			return errUsage
		}
		transfer, err := service.Get(ctx, rest[0])
		if err != nil {
			return err
		}
		return writeJSON(out, transfer.Summary(now))

	case "delete":
		if len(rest) != 1 {
			return errUsage
		}
		if err := service.Delete(ctx, rest[0]); err != nil {
			return err
		}
		return writeJSON(out, map[string]string{"deleted": rest[0]})

	case "clear":
		if err := service.ClearAll(ctx); err != nil {
			return err
		}
		return writeJSON(out, map[string]bool{"cleared": true})

	case "quote":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		amountFlag := fs.String("amount", "", "amount, e.g. 100.50")
		dateFlag := fs.String("date", "", "transfer date, YYYY-MM-DD")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		amount, err := domain.ParseMoney(*amountFlag)
		if err != nil {
			return err
		}
		date, err := domain.ParseDate(*dateFlag)
		if err != nil {
			return domain.NewValidationError(map[string]string{domain.FieldTransferDate: "transfer date must be a valid date (YYYY-MM-DD)"})
		}
		quote, err := service.QuoteFee(amount, date)
		if err != nil {
			return err
		}
		return writeJSON(out, map[string]interface{}{
			"days":  quote.Days,
			"tier":  quote.Tier.Describe(),
			"fee":   domain.FormatBRL(quote.Fee),
			"total": domain.FormatBRL(amount.Amount().Add(quote.Fee)),
		})

	case "tiers":
		tiers := service.FeeTiers()
		described := make([]string, 0, len(tiers))
		for _, tier := range tiers {
			described = append(described, tier.Describe())
		}
		return writeJSON(out, described)
	}

	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

// describe renders validation errors one field per line, sorted by field name
func describe(err error) string {
	fields := domain.FieldErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("invalid request")
	for _, field := range names {
		fmt.Fprintf(&b, "\n  %s: %s", field, fields[field])
	}
	return b.String()
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dialAddr turns a listen address such as ":8080" into a dialable one
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
