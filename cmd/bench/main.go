// Command bench runs a synthetic Get/Release workload against a unique
// factory and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/uniquefactory/factory"
	zaplog "github.com/IvanBrykalov/uniquefactory/log/zap"
	pmet "github.com/IvanBrykalov/uniquefactory/metrics/prom"
	"github.com/IvanBrykalov/uniquefactory/retention"
	"github.com/IvanBrykalov/uniquefactory/retention/boundedset"
	"github.com/IvanBrykalov/uniquefactory/retention/nothing"
	"github.com/IvanBrykalov/uniquefactory/retention/recent"
)

// payload stands in for an expensive shared value (a parsed font, a
// compiled pattern).
type payload struct {
	key  string
	data []byte
}

func main() {
	// ---- Flags ----
	var (
		policy  = flag.String("policy", "nothing", "retention policy: nothing | set | recent")
		history = flag.Int("history", 64, "retention size for set/recent")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		hold     = flag.Int("hold", 8, "refs each worker keeps before releasing the oldest")
		size     = flag.Int("size", 4096, "payload bytes per created value")

		keys  = flag.Int("keys", 100_000, "keyspace size")
		zipfS = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed  = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		debug = flag.Bool("debug", false, "enable factory debug checks")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr; empty = disabled")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			logger.Info("pprof: serving", zap.String("addr", *pprofAddr))
			logger.Warn("pprof server stopped", zap.Error(http.ListenAndServe(*pprofAddr, nil)))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "uniquefactory", "bench", nil)
	if *metricsAddr != "" {
		http.Handle("/metrics", promhttp.Handler())
		go func() {
			logger.Info("metrics: serving", zap.String("addr", *metricsAddr))
			logger.Warn("metrics server stopped", zap.Error(http.ListenAndServe(*metricsAddr, nil)))
		}()
	}

	// ---- Build factory ----
	var keep retention.Policy[string, *payload]
	switch *policy {
	case "nothing":
		keep = nothing.New[string, *payload]()
	case "set":
		keep = boundedset.New[string, *payload](*history)
	case "recent":
		keep = recent.New[string, *payload](*history)
	default:
		logger.Fatal("unknown policy (use nothing, set or recent)", zap.String("policy", *policy))
	}

	var finalized atomic.Uint64
	f := factory.New[string, *payload](factory.Options[string, *payload]{
		Retention:  keep,
		Metrics:    metrics,
		Logger:     zaplog.New(logger),
		Debug:      *debug,
		OnFinalize: func(string, *payload) { finalized.Add(1) },
	})

	// ---- Snapshot flags for goroutines ----
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal, zipfVVal := *zipfS, *zipfV
	holdN := max(*hold, 1)
	sizeN := *size
	workersN := max(*workers, 1)

	create := func(k string) (*payload, error) {
		return &payload{key: k, data: make([]byte, sizeN)}, nil
	}

	// ---- Load generation ----
	var total uint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workersN; w++ {
		g.Go(func() error {
			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(w)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			held := make([]*factory.Ref[string, *payload], 0, holdN)
			defer func() {
				for _, r := range held {
					r.Release()
				}
			}()

			for {
				select {
				case <-ctx.Done():
					return nil
				default:
				}

				k := "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
				r, err := f.GetKeyed(k, create)
				if err != nil {
					return err
				}
				if r.Value().key != k {
					return fmt.Errorf("key %q resolved to value of %q", k, r.Value().key)
				}
				atomic.AddUint64(&total, 1)

				if len(held) == holdN {
					held[0].Release()
					held = append(held[:0], held[1:]...)
				}
				held = append(held, r)
			}
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("workload failed", zap.Error(err))
	}
	elapsed := time.Since(start)

	st := f.Stats()
	_ = f.Close()

	// ---- Report ----
	ops := atomic.LoadUint64(&total)
	hitRate := 0.0
	if ops > 0 {
		hitRate = float64(st.Hits) / float64(ops) * 100
	}

	fmt.Printf("policy=%s history=%d workers=%d hold=%d keys=%d dur=%v seed=%d\n",
		*policy, *history, workersN, holdN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  hits=%d  misses=%d  hit-rate=%.2f%%\n",
		ops, float64(ops)/elapsed.Seconds(), st.Hits, st.Misses, hitRate)
	fmt.Printf("creates=%d  finalized=%d  live=%d  retained=%d\n",
		st.Creates, finalized.Load(), st.Live, st.Retained)
}
