package app

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/haampie/classify-text-experiment/pkg/logger"
)

// signalState tracks the state of signal handling
type signalState struct {
	shutdownInitiated atomic.Bool
}

// setupSignalHandling cancels the run on the first SIGINT or SIGTERM and
// exits on the second.
func (a *App) setupSignalHandling() {
	a.log.Debug("Initializing signal handlers")

	signal.Notify(a.signals, syscall.SIGINT, syscall.SIGTERM)
	go a.handleSignals(a.signals, &signalState{})
}

func (a *App) stopSignalHandling() {
	signal.Stop(a.signals)
}

// handleSignals processes incoming system signals until Shutdown
func (a *App) handleSignals(sigChan <-chan os.Signal, state *signalState) {
	for {
		select {
		case <-a.done:
			return
		case sig := <-sigChan:
			a.log.WithFields(logger.Fields{
				"signal": sig.String(),
			}).Debug("Received system signal")

			if !state.shutdownInitiated.CompareAndSwap(false, true) {
				a.handleForcedShutdown()
				return
			}
			a.handleGracefulShutdown()
		}
	}
}

// handleGracefulShutdown cancels the run context. The running command
// drains its workers, flushes the path lists and returns the context error.
func (a *App) handleGracefulShutdown() {
	a.log.Warn("Interrupted, finishing in-flight files (interrupt again to force)")
	a.cancel()
}

// handleForcedShutdown exits without waiting for the workers
func (a *App) handleForcedShutdown() {
	a.log.Warn("Forced shutdown initiated")
	a.cancel()
	_ = a.log.Sync()
	a.exit(1)
}
