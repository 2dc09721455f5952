// Command svtool moves sparse vectors between Parquet files and a snapshot
// repository and inspects stored snapshots.
//
// Usage:
//
//	svtool [-width 32] [-env .env] <command> [args]
//
// Commands:
//
//	import   <name> <file.parquet>   import a Parquet file as a new version
//	export   [-version N] <name> <file.parquet>
//	stat     [-version N] <name>     print the memory layout of a version
//	optimize <name>                  compact the current version into a new one
//	versions <name>                  list stored versions
//	delete   <name> <version>        delete a non-current version
//
// Configuration is read from SVTOOL_* environment variables, see Config.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/hupe1980/sparsevec"
	"github.com/hupe1980/sparsevec/columnar"
	"github.com/hupe1980/sparsevec/metrics"
	"github.com/hupe1980/sparsevec/plane"
	"github.com/hupe1980/sparsevec/resource"
	"github.com/hupe1980/sparsevec/snapshot"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	errUsage          = errors.New("usage error")
	errUnknownCommand = errors.New("unknown command")
	errInvalidWidth   = errors.New("width must be 8, 16, 32 or 64")
)

func main() {
	envFile := flag.String("env", ".env", "Optional dotenv file with SVTOOL_* variables")
	width := flag.Int("width", 32, "Value width in bits (8, 16, 32 or 64)")
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "svtool: invalid configuration: %v\n", err)
		os.Exit(2)
	}
	logger := NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("Failed to open store", "store", cfg.Store, "error", err)
		os.Exit(1)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			logger.Info("Starting metrics server", "address", cfg.MetricsAddr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				logger.Error("Failed to start metrics server", "error", err)
			}
		}()
	}

	if err := a.run(ctx, *width, flag.Arg(0), flag.Args()[1:]); err != nil {
		logger.Error("Command failed", "command", flag.Arg(0), "error", err)
		if errors.Is(err, errUsage) || errors.Is(err, errUnknownCommand) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// app bundles the collaborators shared by all commands.
type app struct {
	logger    *sparsevec.Logger
	rc        *resource.Controller
	registry  *prometheus.Registry
	collector *metrics.Collector
	repo      *snapshot.Repository
	out       io.Writer
}

func newApp(ctx context.Context, cfg *Config, logger *sparsevec.Logger, out io.Writer) (*app, error) {
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	codec, err := snapshot.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	rc := NewController(cfg)

	repo := snapshot.NewRepository(store,
		snapshot.WithCompression(codec),
		snapshot.WithConcurrency(cfg.Concurrency),
		snapshot.WithController(rc),
		snapshot.WithObserver(collector),
		snapshot.WithRepositoryLogger(logger),
		snapshot.WithVectorOptions(
			sparsevec.WithLogger(logger),
			sparsevec.WithMetricsCollector(collector),
		),
	)

	return &app{
		logger:    logger,
		rc:        rc,
		registry:  registry,
		collector: collector,
		repo:      repo,
		out:       out,
	}, nil
}

func (a *app) run(ctx context.Context, width int, cmd string, args []string) error {
	switch width {
	case 8:
		return run[uint8](ctx, a, cmd, args)
	case 16:
		return run[uint16](ctx, a, cmd, args)
	case 32:
		return run[uint32](ctx, a, cmd, args)
	case 64:
		return run[uint64](ctx, a, cmd, args)
	default:
		return fmt.Errorf("%w: %d", errInvalidWidth, width)
	}
}

func run[T sparsevec.Unsigned](ctx context.Context, a *app, cmd string, args []string) error {
	switch cmd {
	case "import":
		return importParquet[T](ctx, a, args)
	case "export":
		return exportParquet[T](ctx, a, args)
	case "stat":
		return stat[T](ctx, a, args)
	case "optimize":
		return optimize[T](ctx, a, args)
	case "versions":
		return a.versions(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	default:
		return fmt.Errorf("%w: %q", errUnknownCommand, cmd)
	}
}

// versionFlags parses an optional -version flag followed by want positional
// arguments. A zero version selects the current one.
func versionFlags(cmd string, args []string, want int) (uint64, []string, error) {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	version := fs.Uint64("version", 0, "Snapshot version, 0 for the current one")
	if err := fs.Parse(args); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != want {
		return 0, nil, fmt.Errorf("%w: %s expects %d arguments, got %d", errUsage, cmd, want, fs.NArg())
	}
	return *version, fs.Args(), nil
}

func importParquet[T sparsevec.Unsigned](ctx context.Context, a *app, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: import <name> <file.parquet>", errUsage)
	}
	name, path := args[0], args[1]

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := io.ReadAll(resource.NewRateLimitedReader(ctx, f, a.rc))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	v, err := columnar.ReadParquet[T](ctx, bytes.NewReader(data), int64(len(data)),
		columnar.WithController(a.rc),
		columnar.WithVectorOptions(
			sparsevec.WithLogger(a.logger),
			sparsevec.WithMetricsCollector(a.collector),
		),
	)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	v.Optimize(plane.OptCompress)

	version, err := snapshot.Save(ctx, a.repo, name, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: imported %d elements as version %d\n", name, v.Size(), version)
	return nil
}

func exportParquet[T sparsevec.Unsigned](ctx context.Context, a *app, args []string) error {
	version, rest, err := versionFlags("export", args, 2)
	if err != nil {
		return err
	}
	name, path := rest[0], rest[1]

	v, err := snapshot.LoadVersion[T](ctx, a.repo, name, version)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := columnar.WriteParquet(ctx, f, v, columnar.WithController(a.rc)); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: exported %d elements to %s\n", name, v.Size(), path)
	return nil
}

func stat[T sparsevec.Unsigned](ctx context.Context, a *app, args []string) error {
	version, rest, err := versionFlags("stat", args, 1)
	if err != nil {
		return err
	}
	v, err := snapshot.LoadVersion[T](ctx, a.repo, rest[0], version)
	if err != nil {
		return err
	}

	st := v.CalcStat()
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "size\t%d\n", v.Size())
	fmt.Fprintf(tw, "value bits\t%d\n", v.ValueBits())
	fmt.Fprintf(tw, "nullable\t%t\n", v.IsNullable())
	fmt.Fprintf(tw, "effective planes\t%d\n", v.EffectivePlanes())
	fmt.Fprintf(tw, "bit blocks\t%d\n", st.BitBlocks)
	fmt.Fprintf(tw, "gap blocks\t%d\n", st.GapBlocks)
	fmt.Fprintf(tw, "array blocks\t%d\n", st.ArrayBlocks)
	fmt.Fprintf(tw, "memory used\t%d\n", st.MemoryUsed)
	fmt.Fprintf(tw, "max serialize mem\t%d\n", st.MaxSerializeMem)
	return tw.Flush()
}

func optimize[T sparsevec.Unsigned](ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: optimize <name>", errUsage)
	}
	name := args[0]

	v, err := snapshot.Load[T](ctx, a.repo, name)
	if err != nil {
		return err
	}
	before := v.CalcStat().MemoryUsed
	st := v.Optimize(plane.OptCompress)

	version, err := snapshot.Save(ctx, a.repo, name, v)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: optimized into version %d (%d bytes in memory, %d before)\n",
		name, version, st.MemoryUsed, before)
	return nil
}

func (a *app) versions(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: versions <name>", errUsage)
	}
	name := args[0]

	versions, err := a.repo.Versions(ctx, name)
	if err != nil {
		return err
	}
	current, err := a.repo.Latest(ctx, name)
	if err != nil && !errors.Is(err, snapshot.ErrNotFound) {
		return err
	}
	for _, v := range versions {
		marker := ""
		if v == current {
			marker = " (current)"
		}
		fmt.Fprintf(a.out, "%d%s\n", v, marker)
	}
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: delete <name> <version>", errUsage)
	}
	version, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q", errUsage, args[1])
	}
	if err := a.repo.Delete(ctx, args[0], version); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: deleted version %d\n", args[0], version)
	return nil
}
