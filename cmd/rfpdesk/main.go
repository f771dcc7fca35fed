// Command rfpdesk runs one RFP through identification, matching, pricing and
// drafting, and prints the quote, the integrity band and the draft.
package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/grpc/codes"

	"github.com/joseph-ayodele/rfp-desk/constants"
	"github.com/joseph-ayodele/rfp-desk/internal/app"
	"github.com/joseph-ayodele/rfp-desk/internal/common"
	"github.com/joseph-ayodele/rfp-desk/internal/export"
	"github.com/joseph-ayodele/rfp-desk/internal/ingest"
	"github.com/joseph-ayodele/rfp-desk/internal/outbox"
	"github.com/joseph-ayodele/rfp-desk/internal/pipeline"
)

//go:embed sample_rfp.txt
var sampleRFP string

type options struct {
	mode      string
	in        string
	portalURL string
	xlsx      string
	send      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.mode, "mode", "text", "input mode: text | portal")
	flag.StringVar(&opts.in, "in", "", "RFP document path, - for stdin; empty uses the built-in sample")
	flag.StringVar(&opts.portalURL, "portal-url", "", "tender portal address (portal mode); defaults to PORTAL_URL")
	flag.StringVar(&opts.xlsx, "xlsx", "", "write the quote workbook to this path")
	flag.BoolVar(&opts.send, "send", false, "build the proposal mailto link when the integrity index allows it")
	flag.Parse()

	cfg, err := common.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := app.NewLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Pipeline.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.RunTimeout)
		defer cancel()
	}

	err = run(ctx, cfg, opts, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Error("rfpdesk failed", "error", err, "kind", common.KindOf(err))
	}
	os.Exit(exitCode(err))
}

func run(ctx context.Context, cfg *common.Config, opts options, logger *slog.Logger, stdin io.Reader, out io.Writer) error {
	in, err := buildInput(cfg, opts, stdin)
	if err != nil {
		return err
	}

	orch, err := app.NewOrchestrator(cfg, logger, pipeline.WithSink(newConsoleSink(out)))
	if err != nil {
		return err
	}

	res, runErr := orch.Run(ctx, in)
	if res.RunID != "" {
		printQuote(out, res.Snapshot)
	}
	if opts.xlsx != "" && res.Pricing != nil {
		data, err := export.NewService(logger).QuoteXLSX(ctx, res.Snapshot)
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.xlsx, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", opts.xlsx, err)
		}
		fmt.Fprintf(out, "\nQuote workbook: %s\n", opts.xlsx)
	}
	if runErr != nil {
		return runErr
	}

	if opts.send {
		receipt, err := outbox.NewSender(nil, logger).Send(ctx, outbox.Request{
			ContactEmail: res.Extract.ContactEmail,
			ClientName:   res.Extract.ClientName,
			Draft:        res.Draft,
			Index:        res.Integrity.Index,
		})
		if err != nil {
			fmt.Fprintf(out, "\nSend: %s\n", receipt.Status)
			return err
		}
		fmt.Fprintf(out, "\nSend: %s\n%s\n", receipt.Status, receipt.Reference)
	}
	return nil
}

func buildInput(cfg *common.Config, opts options, stdin io.Reader) (pipeline.Input, error) {
	switch opts.mode {
	case "portal":
		url := opts.portalURL
		if url == "" {
			url = cfg.Portal.URL
		}
		return pipeline.Input{Mode: constants.ModePortalScan, PortalURL: url}, nil
	case "text":
		var text string
		var err error
		switch opts.in {
		case "":
			text = sampleRFP
		case "-":
			text, err = ingest.ReadRFPFrom(stdin, "stdin")
		default:
			text, err = ingest.ReadRFP(opts.in)
		}
		if err != nil {
			return pipeline.Input{}, err
		}
		return pipeline.Input{Mode: constants.ModeFreeText, Text: text}, nil
	default:
		return pipeline.Input{}, fmt.Errorf("-mode must be text or portal, got %q: %w", opts.mode, common.ErrInvalidInput)
	}
}

// exitCode maps an error kind onto the process exit status.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, common.ErrReviewRequired) {
		return 3
	}
	switch common.ToStatus(err).Code() {
	case codes.InvalidArgument:
		return 2
	case codes.Aborted:
		return 130
	default:
		return 1
	}
}
