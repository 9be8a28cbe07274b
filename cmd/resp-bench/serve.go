package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"resp-bench/internal/server"
)

var (
	serveAddr       string
	serveFault      string
	serveFaultDelay time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bundled in-memory RESP server",
	Long: `Start the bundled in-memory RESP server.

The server speaks enough of the protocol to be a benchmark target:
PING, ECHO, SET, GET and DEL. Fault injection modes are available to
exercise client timeout handling: delay (slow replies), stall (never
reply) and close (drop the connection before replying).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		faults, err := parseFaults(serveFault, serveFaultDelay)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()

		srv := server.New(server.Config{Addr: serveAddr, Faults: faults})
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop()

		fmt.Printf("serving on %s (faults: %s)\n", srv.Addr(), faults.Mode)
		fmt.Println("Press Ctrl+C to stop")

		<-ctx.Done()
		return nil
	},
}

func parseFaults(mode string, delay time.Duration) (server.Faults, error) {
	switch mode {
	case "", "none":
		return server.Faults{}, nil
	case "delay":
		return server.Faults{Mode: server.FaultDelay, Delay: delay}, nil
	case "stall":
		return server.Faults{Mode: server.FaultStall}, nil
	case "close":
		return server.Faults{Mode: server.FaultClose}, nil
	default:
		return server.Faults{}, fmt.Errorf("unknown fault mode: %s (available: none, delay, stall, close)", mode)
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":6379", "listen address")
	serveCmd.Flags().StringVar(&serveFault, "fault", "none", "fault injection mode (none, delay, stall, close)")
	serveCmd.Flags().DurationVar(&serveFaultDelay, "fault-delay", 100*time.Millisecond, "reply delay for the delay fault mode")
	rootCmd.AddCommand(serveCmd)
}
