// ticket-lookup looks up tickets by PRN or ticket code from the terminal.
// Codes come from the arguments, or one per line on stdin when none are given.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BearBump/TicketBox/internal/client/ticketclient"
	"github.com/BearBump/TicketBox/internal/presenter"
	"github.com/spf13/pflag"
)

type exitError struct {
	failed int
}

func (e exitError) Error() string {
	return fmt.Sprintf("%d lookup(s) failed", e.failed)
}

func (e exitError) ExitCode() int {
	return 1
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	var addr, grpcAddr string
	var timeout time.Duration

	flagSet := pflag.NewFlagSet("ticket-lookup", pflag.ContinueOnError)
	flagSet.StringVar(&addr, "addr", "http://localhost:8080", "base URL of the ticket HTTP API")
	flagSet.StringVar(&grpcAddr, "grpc", "", "use the gRPC API at host:port instead of HTTP")
	flagSet.DurationVar(&timeout, "timeout", 10*time.Second, "per-lookup timeout")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	var tr ticketclient.Transport
	if grpcAddr != "" {
		g, err := ticketclient.NewGRPC(grpcAddr)
		if err != nil {
			return err
		}
		defer func() { _ = g.Close() }()
		tr = g
	} else {
		tr = ticketclient.NewHTTP(addr, timeout)
	}

	codes := flagSet.Args()
	if len(codes) == 0 {
		var err error
		if codes, err = readCodes(stdin); err != nil {
			return err
		}
	}

	if failed := lookupAll(context.Background(), tr, codes, timeout, stdout); failed > 0 {
		return exitError{failed: failed}
	}
	return nil
}

func readCodes(r io.Reader) ([]string, error) {
	var codes []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			codes = append(codes, line)
		}
	}
	return codes, sc.Err()
}

// lookupAll prints one result per code and returns how many did not resolve to a ticket.
func lookupAll(ctx context.Context, tr ticketclient.Transport, codes []string, timeout time.Duration, out io.Writer) int {
	th := newTheme(out)

	if len(codes) == 0 {
		fmt.Fprint(out, th.renderError("", ticketclient.MessageEmptyInput))
		return 1
	}

	failed := 0
	var st ticketclient.State
	for i, code := range codes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		st.Clear()
		st.SetInput(code)

		lctx, cancel := context.WithTimeout(ctx, timeout)
		st.Lookup(lctx, tr)
		cancel()

		if st.Err != "" {
			failed++
			fmt.Fprint(out, th.renderError(code, st.Err))
			continue
		}
		fmt.Fprint(out, th.renderTicket(presenter.Present(*st.Ticket)))
	}
	return failed
}
