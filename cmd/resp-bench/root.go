package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"resp-bench/internal/logger"
)

var version = "dev"

var (
	targetHost string
	targetPort int
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:     "resp-bench",
	Short:   "Correctness checker and benchmark harness for RESP key-value servers",
	Long:    "resp-bench verifies basic correctness of a RESP (Redis serialization protocol) key-value server and measures its throughput with single-connection and concurrent workloads.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

// Execute はCLIを実行する
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&targetHost, "host", "127.0.0.1", "target server host")
	rootCmd.PersistentFlags().IntVar(&targetPort, "port", 6379, "target server port")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

func targetAddr() string {
	return net.JoinHostPort(targetHost, strconv.Itoa(targetPort))
}

// signalContext はSIGINT/SIGTERMでキャンセルされるcontextを返す
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			fmt.Println("\ninterrupt received, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
