package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tailscale.com/tsweb"

	"github.com/banshee-data/vrtrack/internal/config"
	"github.com/banshee-data/vrtrack/internal/frameloop"
	"github.com/banshee-data/vrtrack/internal/geom"
	"github.com/banshee-data/vrtrack/internal/monitoring"
	"github.com/banshee-data/vrtrack/internal/posecache"
	"github.com/banshee-data/vrtrack/internal/timeutil"
	"github.com/banshee-data/vrtrack/internal/version"
	"github.com/banshee-data/vrtrack/internal/vr"
	"github.com/banshee-data/vrtrack/internal/vrfeed"
)

var (
	configPath  = flag.String("config", "", "Path to tracking config JSON (optional)")
	port        = flag.String("port", "", "Serial port of the tracker bridge (overrides serial_port)")
	listen      = flag.String("listen", "localhost:8090", "Listen address for /debug/ pages (empty disables)")
	simulate    = flag.Bool("sim", false, "Use the simulated orbit instead of a serial feed")
	logDiag     = flag.Bool("log-diag", false, "Enable diagnostic logging (volume lifecycle, feed state)")
	logTrace    = flag.Bool("log-trace", false, "Enable per-frame trace logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// demoSphereRadius is the sphere created on the right hand at startup.
const demoSphereRadius = 0.1

// orbitPeriod is one lap of the simulated left hand.
const orbitPeriod = 4 * time.Second

func setLogWriters(diag, trace bool) {
	var diagW, traceW io.Writer
	if diag {
		diagW = os.Stderr
	}
	if trace {
		traceW = os.Stderr
	}
	posecache.SetLogWriters(os.Stderr, diagW, traceW)
	vrfeed.SetLogWriters(os.Stderr, diagW, traceW)
}

func loadConfig(path string) (*config.TrackingConfig, error) {
	if path == "" {
		return config.EmptyTrackingConfig(), nil
	}
	return config.LoadTrackingConfig(path)
}

// logListener reports every event through monitoring.Logf.
type logListener struct{}

func (logListener) OnButtonEvent(e vr.ButtonEvent) {
	monitoring.Logf("button %s %s on %s", e.Button, e.Kind, e.Device)
}

func (logListener) OnOverlapEvent(e vr.OverlapEvent) {
	monitoring.Logf("volume %d %s by %s", e.Handle, e.Kind, e.Device)
}

// setup builds the manager, registers the logging listener and creates the
// demo sphere on the right hand.
func setup(cfg posecache.Config, rt vr.Runtime) (*posecache.Manager, vr.Handle, error) {
	m := posecache.New(cfg)
	if err := m.Init(rt); err != nil {
		return nil, vr.InvalidHandle, err
	}
	m.RegisterButtonListener(logListener{})
	m.RegisterOverlapListener(logListener{})

	local := geom.Identity()
	h := m.CreateLocalOverlapSphere(demoSphereRadius, &local, vr.DeviceRightHand)
	if h == vr.InvalidHandle {
		return nil, h, errors.New("failed to create demo sphere")
	}
	return m, h, nil
}

// feedCounters is implemented by line feeds; the simulator has none.
type feedCounters interface {
	Frames() uint64
	Malformed() uint64
}

func attachDebug(mux *http.ServeMux, m *posecache.Manager, stats *monitoring.FrameStats, feed string, counters feedCounters) {
	m.AttachAdminRoutes(mux)
	debug := tsweb.Debugger(mux)
	debug.KV("vrtrack version", version.String())
	debug.KV("vrtrack feed", feed)
	debug.KVFunc("vrtrack frame stats", func() any { return stats.Snapshot().String() })
	if counters != nil {
		debug.KVFunc("vrtrack feed lines", func() any {
			return fmt.Sprintf("%d frames, %d malformed", counters.Frames(), counters.Malformed())
		})
	}
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("vrtrack %s\n", version.String())
		return
	}

	setLogWriters(*logDiag, *logTrace)

	trackingCfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg, err := posecache.ConfigFromTracking(trackingCfg)
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	serialPort := trackingCfg.GetSerialPort()
	if *port != "" {
		serialPort = *port
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	clock := timeutil.RealClock{}

	var (
		rt       vr.Runtime
		feedName string
		sim      *vrfeed.SimRuntime
		counters feedCounters
	)
	if *simulate || serialPort == "" {
		sim = vrfeed.NewSimRuntime()
		rt = sim
		feedName = "simulated orbit"
	} else {
		feed, err := vrfeed.OpenSerialFeed(serialPort, vrfeed.PortOptions{BaudRate: trackingCfg.GetSerialBaudRate()})
		if err != nil {
			log.Fatalf("failed to open tracker feed: %v", err)
		}
		defer feed.Close()
		rt = feed
		feedName = serialPort
		counters = feed

		// run the monitor routine to manage IO on the serial port
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := feed.Monitor(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("failed to monitor tracker feed: %v", err)
			}
			log.Print("monitor routine terminated")
		}()
	}

	m, sphere, err := setup(cfg, rt)
	if err != nil {
		log.Fatalf("failed to start pose cache: %v", err)
	}
	log.Printf("session %s: feed=%s demo sphere=%d", m.ID(), feedName, sphere)

	var updater frameloop.Updater = m
	if sim != nil {
		updater = newOrbit(sim, m, clock, orbitPeriod)
	}

	var stats monitoring.FrameStats

	// HTTP server goroutine
	if *listen != "" {
		mux := http.NewServeMux()
		attachDebug(mux, m, &stats, feedName, counters)

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("failed to start server: %v", err)
				}
			}()

			<-ctx.Done()
			log.Println("shutting down HTTP server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP server shutdown error: %v", err)
				if err := server.Close(); err != nil {
					log.Printf("HTTP server force close error: %v", err)
				}
			}
			log.Printf("HTTP server routine stopped")
		}()
	}

	if err := frameloop.Run(ctx, clock, trackingCfg.GetFrameInterval(), updater, &stats); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("frame loop error: %v", err)
	}

	wg.Wait()
	log.Printf("Graceful shutdown complete: %s", stats.Snapshot())
}
