/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"stakeengine/domain"
	"stakeengine/interface/exporter"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// ingestPollInterval is deliberately unconfigured; chain polling is an
// implementation detail of how this driver receives messages, not a
// protocol timing.
const ingestPollInterval = 5 * time.Second

const metricsAddr = ":9100"

var quit chan bool

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the driver's dispatch, tick and cleanup loops",
	Long:  `Starts the driver's dispatch, tick and cleanup loops. To stop it, run 'stop' command.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("start called.")

		defaultDependencyInject()
		quit = make(chan bool)

		go messenger.Run()
		go consumeSendResults()
		go serveMetrics()

		ingestTicker := schedule(ingest.Poll, ingestPollInterval, quit)
		tickTicker := schedule(runRewardTick, domain.GetTickInterval(), quit)
		cleanupTicker := schedule(runCleanup, domain.GetCleanupInterval(), quit)
		gaugeTicker := schedule(refreshGauges, ingestPollInterval, quit)

		signal.Ignore()
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		s := <-stop
		log.Printf("Got signal '%v', stopping", s)

		ingestTicker.Stop()
		tickTicker.Stop()
		cleanupTicker.Stop()
		gaugeTicker.Stop()
		close(outboundCh)
	},
}

// taskMu serializes every scheduled task, so ingest dispatch, reward
// ticks, cleanup sweeps and gauge refreshes never touch the Ledger at the
// same time.
var taskMu sync.Mutex

func schedule(task func(), interval time.Duration, done chan bool) *time.Ticker {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {

			case <-ticker.C:
				ticker.Stop()
				taskMu.Lock()
				task()
				taskMu.Unlock()
				ticker.Reset(interval)

			case <-done:
				return
			}
		}
	}()
	return ticker
}

// consumeSendResults drains the Messenger's outcome channel so a failed
// send is logged and counted instead of silently dropped.
func consumeSendResults() {
	for result := range resultsCh {
		if !result.Ok {
			log.Printf("🔴 send failed [reference=%v kind=%v] - %v\n", result.Reference, result.Kind, result.Err)
			exporter.IncErrorCount()
		}
	}
}

func serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("metrics listening on %s/metrics\n", metricsAddr)
	if err := http.ListenAndServe(metricsAddr, mux); err != nil {
		log.Printf("🔴 metrics server - %v\n", err.Error())
	}
}

func init() {
	rootCmd.AddCommand(startCmd)
}
