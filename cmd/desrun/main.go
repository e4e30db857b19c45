// Command desrun is the generic CLI host for a des.Runtime: it loads a
// network topology (and, optionally, a runtime config file), builds the
// Runtime, runs it to completion, and prints the resulting profile. CLI
// flags always win over a config file's values, which in turn win over
// the Builder's spec.md §6 defaults (SPEC_FULL.md §1.4).
//
// desrun has no built-in module behaviors of its own — a topology loaded
// this way gets netsim's bare fallback Behavior on every module, so the
// run mostly exercises wiring and channel mechanics rather than
// application logic. Embedding programs that need real module behavior
// construct their own *netsim.Graph in Go and drive
// des.NewRuntime directly; desrun is the topology-as-data entry point.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	flag "github.com/spf13/pflag"

	"github.com/GoCodeAlone/des"
	"github.com/GoCodeAlone/des/netsim"
	"github.com/GoCodeAlone/des/simtime"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "desrun:", err)
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath   string
	topologyPath string
	watch        bool
	statusAddr   string

	seed       uint64
	limitN     int64
	limitT     float64
	cqueueN    int
	cqueueT    float64
	quiet      bool
	fesVariant string
}

func parseFlags(args []string) (*cliFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("desrun", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVar(&f.configPath, "cfg-file", "", "path to a TOML runtime config file")
	fs.StringVar(&f.topologyPath, "topology", "", "path to a YAML network topology file (required)")
	fs.BoolVar(&f.watch, "watch", false, "re-run the simulation whenever --cfg-file or --topology changes")
	fs.StringVar(&f.statusAddr, "status-addr", "", "if set, serve GET /status and /metrics on this address while running (e.g. :8090)")

	fs.Uint64Var(&f.seed, "cfg-seed", 0, "override the RNG seed")
	fs.Int64Var(&f.limitN, "cfg-limit-n", 0, "override the max event count (RuntimeLimit)")
	fs.Float64Var(&f.limitT, "cfg-limit-t", 0, "override the max simulated seconds (RuntimeLimit)")
	fs.IntVar(&f.cqueueN, "cfg-cqueue-n", 0, "override the calendar-queue bucket count")
	fs.Float64Var(&f.cqueueT, "cfg-cqueue-t", 0, "override the calendar-queue bucket width, in seconds")
	fs.BoolVar(&f.quiet, "cfg-quiet", false, "override quiet mode")
	fs.StringVar(&f.fesVariant, "cfg-fes-variant", "", "override the FES variant (\"heap\" or \"calendar\")")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

func run(args []string) error {
	f, fs, err := parseFlags(args)
	if err != nil {
		return err
	}
	if f.topologyPath == "" {
		return fmt.Errorf("--topology is required")
	}

	if f.statusAddr != "" {
		statusServer(f.statusAddr)
	}

	if !f.watch {
		_, err := buildAndRun(f)
		return err
	}
	return watchAndRerun(f, fs)
}

// buildAndRun loads the topology (and config file, if any), layers CLI
// overrides on top, runs one Runtime to completion, and prints its
// profile.
func buildAndRun(f *cliFlags) (*des.Runtime, error) {
	graph, err := netsim.LoadTopologyYAML(f.topologyPath, nil)
	if err != nil {
		return nil, err
	}

	var opts []des.Option
	if f.configPath != "" {
		fileOpts, err := des.LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fileOpts...)
	}
	opts = append(opts, cliOverrides(f)...)

	app := &desrunApp{graph: graph}
	rt, err := des.NewRuntime(app, opts...)
	if err != nil {
		return nil, err
	}
	currentRuntime.Store(rt)

	profile, err := rt.Run()
	if err != nil {
		return rt, err
	}
	fmt.Printf("events=%d final_time=%s wall=%s drops=%v\n",
		profile.EventCount, profile.FinalTime, profile.WallTime, profile.ChannelDrops)
	return rt, nil
}

// cliOverrides returns the Option values for every flag given a non-zero
// (or, for --cfg-quiet, true) value, so an unset flag doesn't clobber a
// value the config file (or the Builder default) already supplied. A flag
// explicitly set to its zero value is therefore not applied either.
func cliOverrides(f *cliFlags) []des.Option {
	var opts []des.Option
	if f.seed != 0 {
		opts = append(opts, des.WithSeed(f.seed))
	}
	if f.limitN != 0 {
		opts = append(opts, des.WithMaxIterations(f.limitN))
	}
	if f.limitT != 0 {
		opts = append(opts, des.WithMaxTime(simtime.FromDuration(time.Duration(f.limitT*float64(time.Second)))))
	}
	if f.cqueueN != 0 {
		opts = append(opts, des.WithCalendarQueueBuckets(f.cqueueN))
	}
	if f.cqueueT != 0 {
		opts = append(opts, des.WithCalendarQueueTimespan(time.Duration(f.cqueueT*float64(time.Second))))
	}
	if f.quiet {
		opts = append(opts, des.WithQuiet(true))
	}
	switch f.fesVariant {
	case "":
	case "calendar":
		opts = append(opts, des.WithFESVariant(des.VariantCalendar))
	case "heap":
		opts = append(opts, des.WithFESVariant(des.VariantHeap))
	}
	return opts
}

// watchAndRerun re-runs buildAndRun every time the topology or config file
// changes on disk, following the usual fsnotify idiom of a single
// long-lived Watcher draining its Events/Errors channels in a loop. The
// process exits on SIGINT/SIGTERM.
func watchAndRerun(f *cliFlags, fs *flag.FlagSet) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("desrun: start watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(f.topologyPath); err != nil {
		return fmt.Errorf("desrun: watch %s: %w", f.topologyPath, err)
	}
	if f.configPath != "" {
		if err := w.Add(f.configPath); err != nil {
			return fmt.Errorf("desrun: watch %s: %w", f.configPath, err)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	if _, err := buildAndRun(f); err != nil {
		fmt.Fprintln(os.Stderr, "desrun: run failed:", err)
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Printf("desrun: %s changed, re-running\n", ev.Name)
			if _, err := buildAndRun(f); err != nil {
				fmt.Fprintln(os.Stderr, "desrun: run failed:", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "desrun: watch error:", err)
		case <-sigCh:
			return nil
		}
	}
}

// currentRuntime holds the most recently started Runtime, for the status
// server to poll; desrun runs one Runtime at a time (the kernel's own
// process-wide exclusion lock enforces this regardless), so a single slot
// is enough.
var currentRuntime atomic.Pointer[des.Runtime]

// statusServer starts a chi-routed HTTP server reporting the current
// Runtime's live Status under /status and its Profile's channel-drop
// counters, as recorded so far, under /metrics.
func statusServer(addr string) {
	r := chi.NewRouter()
	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		rt := currentRuntime.Load()
		if rt == nil {
			http.Error(w, "no runtime started yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, rt.Status())
	})
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		rt := currentRuntime.Load()
		if rt == nil {
			http.Error(w, "no runtime started yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, rt.Profile().ChannelDrops)
	})

	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, "desrun: status server:", err)
		}
	}()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// desrunApp is the minimal des.Application/netsim.GraphProvider pairing
// (the netsim and BDD tests use the same shape): a topology-only run with
// no extra lifecycle behavior beyond the staged start and a graph teardown
// at the end.
type desrunApp struct {
	graph *netsim.Graph
}

func (a *desrunApp) Lifecycle() des.Lifecycle { return a }
func (a *desrunApp) NetGraph() *netsim.Graph  { return a.graph }

func (a *desrunApp) AtSimStart(rt *des.Runtime) error {
	return netsim.BeginStagedStart(rt)
}

func (a *desrunApp) AtSimEnd(rt *des.Runtime) error {
	a.graph.Teardown()
	return nil
}
