package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"whohas/internal/capture"
	"whohas/internal/config"
	"whohas/internal/database"
	"whohas/internal/enrich"
	"whohas/internal/filter"
	"whohas/internal/pipeline"
	"whohas/internal/report"
	"whohas/internal/support"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

const clearScreen = "\x1b[2J\x1b[H"

func init() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}
}

func main() {
	ifaceFlag := flag.String("iface", "", "Interface to capture and probe on")
	dbFlag := flag.String("db", support.GetEnv("WHOHAS_DB", "whohas.db"), "Ledger database file")
	batchFlag := flag.Int("batch", 0, "Requests captured per batch before the report redraws")
	resolveFlag := flag.Bool("resolve", true, "Reverse-resolve newly observed addresses")
	activeFlag := flag.Bool("active", false, "Probe newly observed targets for liveness")
	profileFlag := flag.String("profile", "", "Color profile ("+strings.Join(config.ColorProfileNames(), ", ")+", disable)")
	senderAllow := flag.String("sender-allow", "", "Comma-separated senders to accept exclusively")
	senderDeny := flag.String("sender-deny", "", "Comma-separated senders to drop")
	targetAllow := flag.String("target-allow", "", "Comma-separated targets to accept exclusively")
	targetDeny := flag.String("target-deny", "", "Comma-separated targets to drop")
	analyzeFlag := flag.Bool("analyze", false, "Build a fresh ledger from import files instead of capturing")
	importDBs := flag.String("import-db", "", "Comma-separated ledger snapshots to merge (analyze mode)")
	importPcaps := flag.String("import-pcap", "", "Comma-separated capture files to ingest (analyze mode)")
	verboseFlag := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if *verboseFlag {
		log.SetLevel(log.DebugLevel)
	}

	config.ReadSettings()
	cfg := config.GetConfig()

	filters := filter.Pair{
		Sender: filter.New(
			mergeList(cfg.Filters.SenderAllow, *senderAllow),
			mergeList(cfg.Filters.SenderDeny, *senderDeny),
		),
		Target: filter.New(
			mergeList(cfg.Filters.TargetAllow, *targetAllow),
			mergeList(cfg.Filters.TargetDeny, *targetDeny),
		),
	}

	profile := selectProfile(cfg, *profileFlag)

	reportOpts := report.Options{
		Resolve: *resolveFlag,
		Active:  *activeFlag,
		Profile: profile,
	}

	if *analyzeFlag {
		runAnalyze(*dbFlag, splitList(*importDBs), splitList(*importPcaps), filters, reportOpts)
		return
	}

	iface := *ifaceFlag
	if iface == "" {
		iface = cfg.Capture.Interface
	}
	batchSize := *batchFlag
	if batchSize <= 0 {
		batchSize = int(cfg.Capture.BatchSize)
	}

	runCapture(cfg, iface, *dbFlag, batchSize, filters, reportOpts)
}

func runCapture(cfg config.Config, iface, dbPath string, batchSize int, filters filter.Pair, reportOpts report.Options) {
	if iface == "" {
		log.Fatal("No capture interface configured; pass -iface or set capture.interface in the settings file")
	}

	db, err := database.SetupDB(database.WithPath(dbPath))
	if err != nil {
		log.Fatalf("failed to set up database: %v", err)
	}

	var resolver pipeline.NameResolver
	if reportOpts.Resolve {
		resolver = enrich.NewReverseResolver(config.ResolveTimeout(cfg))
	}

	var prober pipeline.Prober
	if reportOpts.Active {
		livenessProber, err := enrich.NewLivenessProber(iface, enrich.ProbeConfig{
			Retries: int(cfg.Probe.Retries),
			Timeout: config.ProbeTimeout(cfg),
		})
		if err != nil {
			log.Fatalf("failed to set up liveness prober: %v", err)
		}
		defer livenessProber.Close()
		prober = livenessProber
	}

	ingestor, err := pipeline.NewIngestor(db, resolver, prober, pipeline.Options{
		Resolve: reportOpts.Resolve,
		Active:  reportOpts.Active,
		Filters: filters,
		Workers: int(cfg.Probe.Workers),
	})
	if err != nil {
		log.Fatalf("failed to set up ingestion: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sniffer := capture.NewSniffer(iface, batchSize, filters)
	go func() {
		if err := sniffer.Run(ctx); err != nil {
			log.Error("Capture stopped", "error", err)
			stop()
		}
	}()

	log.Info("Capturing who-has requests", "interface", iface, "batch", batchSize)
	render(db, reportOpts, true)

	for batch := range sniffer.Batches() {
		if err := ingestor.IngestBatch(ctx, batch); err != nil {
			log.Error("Failed to ingest batch", "error", err)
			continue
		}
		render(db, reportOpts, true)
	}

	log.Info("Capture finished", "database", dbPath)
}

func runAnalyze(dbPath string, snapshots, pcaps []string, filters filter.Pair, reportOpts report.Options) {
	if len(snapshots) == 0 && len(pcaps) == 0 {
		log.Fatal("Analyze mode needs at least one -import-db or -import-pcap file")
	}

	db, err := database.SetupDB(database.WithPath(dbPath), database.WithOverwrite())
	if err != nil {
		log.Fatalf("failed to set up database: %v", err)
	}

	for _, path := range snapshots {
		if err := database.MergeSnapshot(db, path); err != nil {
			log.Fatalf("failed to merge %s: %v", path, err)
		}
		log.Info("Merged ledger snapshot", "file", path)
	}

	// Capture files re-run the same validation and lists as live capture,
	// but without enrichment: imported addresses keep whatever their
	// snapshots knew.
	ingestor, err := pipeline.NewIngestor(db, nil, nil, pipeline.Options{Filters: filters})
	if err != nil {
		log.Fatalf("failed to set up ingestion: %v", err)
	}

	for _, path := range pcaps {
		requests, err := capture.ReadFile(path, filters)
		if err != nil {
			log.Fatalf("failed to read %s: %v", path, err)
		}
		if err := ingestor.IngestBatch(context.Background(), requests); err != nil {
			log.Fatalf("failed to ingest %s: %v", path, err)
		}
		log.Info("Ingested capture file", "file", path, "requests", len(requests))
	}

	render(db, reportOpts, false)
}

func render(db *gorm.DB, opts report.Options, clear bool) {
	output, err := report.Build(db, opts)
	if err != nil {
		log.Error("Failed to build report", "error", err)
		return
	}

	if clear {
		fmt.Print(clearScreen)
	}
	fmt.Println(output)
}

func selectProfile(cfg config.Config, flagValue string) *config.ColorProfile {
	name := flagValue
	if name == "" {
		name = cfg.Report.ColorProfile
	}
	if name == "" || name == "disable" {
		return nil
	}

	profile, ok := config.ColorProfileByName(name)
	if !ok {
		log.Warn("Unknown color profile, rendering plain", "profile", name)
		return nil
	}
	return &profile
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var entries []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			entries = append(entries, entry)
		}
	}
	return entries
}

func mergeList(base []string, raw string) []string {
	return append(append([]string{}, base...), splitList(raw)...)
}
