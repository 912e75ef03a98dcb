// Command fieldbrain is the reference driver for the decision core: it
// ingests recognition snapshots over a websocket, ticks a single
// behavior.Gameplay instance, and serves a small status API using the
// websocket read-pump shape and gorilla/mux for routing.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/Garsondee/fieldbrain/internal/actuator"
	"github.com/Garsondee/fieldbrain/internal/behavior"
	"github.com/Garsondee/fieldbrain/internal/config"
	"github.com/Garsondee/fieldbrain/internal/decisionlog"
	"github.com/Garsondee/fieldbrain/internal/perception"
)

var upgrader = websocket.Upgrader{}

// logActuator is a reference actuator that logs every setpoint instead of
// driving real motor hardware.
type logActuator struct{}

func (logActuator) SetXYW(x, y, w float64) error {
	log.Printf("actuator: set_xyw x=%.3f y=%.3f w=%.3f", x, y, w)
	return nil
}

func (logActuator) SetThrower(rpm int) error {
	log.Printf("actuator: set_thrower rpm=%d", rpm)
	return nil
}

func (logActuator) Apply() error {
	return nil
}

func (logActuator) Start() error {
	log.Println("actuator: start")
	return nil
}

// snapshotSlot holds the most recently published snapshot, swapped
// atomically so the websocket reader and the drive loop never share a
// lock.
type snapshotSlot struct {
	v atomic.Value
}

func (s *snapshotSlot) store(snap *perception.Snapshot) {
	s.v.Store(snap)
}

func (s *snapshotSlot) load() *perception.Snapshot {
	v, ok := s.v.Load().(*perception.Snapshot)
	if !ok {
		return nil
	}
	return v
}

func main() {
	var configPath string
	var addr string
	var tickPeriod time.Duration
	var verboseLog bool

	flag.StringVar(&configPath, "config", "", "path to a config file (optional)")
	flag.StringVar(&addr, "addr", ":8090", "HTTP listen address")
	flag.DurationVar(&tickPeriod, "tick", 33*time.Millisecond, "driver tick period")
	flag.BoolVar(&verboseLog, "verbose", false, "record per-tick maneuver entries in the decision log")
	flag.Parse()

	cfg, err := config.New(configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logCore := decisionlog.New(verboseLog)
	g := behavior.New(cfg, logActuator{}, cfg.CalibrationCurve(), logCore)

	slot := &snapshotSlot{}

	router := mux.NewRouter()
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveSnapshotFeed(w, r, slot)
	})
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	}).Methods(http.MethodGet)
	router.HandleFunc("/decisions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(logCore.Tail().Recent())
	}).Methods(http.MethodGet)
	router.HandleFunc("/state", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"state": g.State().Kind.String()})
	}).Methods(http.MethodGet)

	go driveLoop(g, slot, tickPeriod)

	log.Printf("fieldbrain listening on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("serve: %v", err)
	}
}

// driveLoop is the single owner goroutine that calls Step; it is the
// only goroutine that ever touches the Gameplay instance.
func driveLoop(g *behavior.Gameplay, slot *snapshotSlot, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for now := range ticker.C {
		snap := slot.load()
		if err := g.Step(now, snap); err != nil {
			log.Printf("step error: %v", err)
		}
	}
}

// serveSnapshotFeed reads a stream of JSON-encoded perception.Snapshot
// messages from the perception producer and republishes each into the
// atomic slot the driver loop reads from.
func serveSnapshotFeed(w http.ResponseWriter, r *http.Request, slot *snapshotSlot) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade: %v", err)
		return
	}
	defer ws.Close()

	for {
		var snap perception.Snapshot
		if err := ws.ReadJSON(&snap); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("snapshot feed closed unexpectedly: %v", err)
			}
			return
		}
		slot.store(&snap)
	}
}
