// Package cli implements the streampref command line: a cobra root command
// with "run" (drive the demo query through its ticks, printing each tick's
// output as a table) and "serve" (additionally expose Prometheus metrics
// and the read-only HTTP inspection API) subcommands. Grounded on goProbe's
// cmd/goProbe/cmd package shape: Execute() builds and runs a cobra root
// command, subcommands close over a loaded Config.
package cli

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/streampref/streampref/cmd/streampref/internal/demo"
	"github.com/streampref/streampref/internal/config"
	"github.com/streampref/streampref/internal/httpapi"
	"github.com/streampref/streampref/prefop"
	"github.com/streampref/streampref/record"
	"github.com/streampref/streampref/theory"
)

// Execute builds and runs the root command.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:   "streampref",
		Short: "streampref drives a fixed demo preference query through its ticks",
	}

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())

	return rootCmd.Execute()
}

func newRunCmd() *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Tick the demo query to completion, printing each tick's output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			q, err := demo.New(cfg.Algorithm, algorithmToTheory(cfg.Algorithm), topN)
			if err != nil {
				return err
			}
			for t := 0; t < q.TickCount(); t++ {
				if err := q.Run(int64(t)); err != nil {
					return err
				}
				printTick(cmd, int64(t), q)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&topN, "top", 2, "top-k size for the demo query's output (negative returns the best set)")
	return cmd
}

func newServeCmd() *cobra.Command {
	var topN int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Tick the demo query on an interval while serving metrics and the inspection API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			q, err := demo.New(cfg.Algorithm, algorithmToTheory(cfg.Algorithm), topN)
			if err != nil {
				return err
			}

			registry := httpapi.NewRegistry()
			registry.Register("demo", q)
			apiServer := httpapi.NewServer(registry)

			httpAddr := cfg.HTTPAddr
			if httpAddr == "" {
				httpAddr = ":8080"
			}
			metricsAddr := cfg.MetricsAddr
			if metricsAddr == "" {
				metricsAddr = ":9090"
			}

			apiSrv := &http.Server{Addr: httpAddr, Handler: apiServer.Handler()}
			metricsMux := http.NewServeMux()
			metricsMux.Handle("/metrics", promhttp.Handler())
			metricsSrv := &http.Server{Addr: metricsAddr, Handler: metricsMux}

			go func() { _ = apiSrv.ListenAndServe() }()
			go func() { _ = metricsSrv.ListenAndServe() }()

			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

			t := int64(0)
			for {
				select {
				case <-ticker.C:
					if int(t) < q.TickCount() {
						if err := q.Run(t); err != nil {
							return err
						}
						t++
					}
				case <-sig:
					return nil
				}
			}
		},
	}
	cmd.Flags().IntVar(&topN, "top", 2, "top-k size for the demo query's output (negative returns the best set)")
	return cmd
}

func algorithmToTheory(alg prefop.Algorithm) theory.Algorithm {
	switch alg {
	case prefop.AlgIncPartition, prefop.AlgPartition:
		return theory.AlgPartition
	case prefop.AlgIncGraphNoTransitive:
		return theory.AlgDirect
	default:
		return theory.AlgDepthSearch
	}
}

func printTick(cmd *cobra.Command, t int64, q *demo.Query) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, color.CyanString("tick %d", t))

	table := tablewriter.NewTable(out)
	table.Header([]string{"a", "b", "c"})
	for _, r := range q.GetCurrentList() {
		table.Append(renderRow(r))
	}
	table.Render()

	best := q.BestRecords()
	if len(best) > 0 {
		fmt.Fprintln(out, color.GreenString("best: %d record(s)", len(best)))
	}
}

func renderRow(r record.Record) []string {
	attrs := r.Attributes()
	row := make([]string, len(attrs))
	for i, a := range attrs {
		v, err := r.Get(a)
		if err != nil {
			row[i] = "?"
			continue
		}
		row[i] = strings.TrimSpace(v.String())
	}
	return row
}
