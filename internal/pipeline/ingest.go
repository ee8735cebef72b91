package pipeline

import (
	"context"
	"fmt"

	"whohas/internal/database"
	"whohas/internal/domain"
	"whohas/internal/enrich"
	"whohas/internal/filter"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const defaultEnrichWorkers = 8

// Request is one validated who-has observation: sender asked for target.
type Request struct {
	Sender string
	Target string
}

// NameResolver looks up a reverse name for an address.
type NameResolver interface {
	Resolve(ctx context.Context, address string) (string, error)
}

// Prober checks whether an address answers a targeted who-has request.
type Prober interface {
	Probe(ctx context.Context, address string) (string, error)
}

type Options struct {
	Resolve bool // attempt a reverse name for every new address
	Active  bool // probe every new target address
	Filters filter.Pair
	Workers int // enrichment pool size
}

// Ingestor turns batches of who-has requests into ledger state. Registry
// and ledger writes happen inline per event; enrichment of freshly created
// addresses runs on a bounded worker pool so a slow probe never stalls
// ingestion of unrelated traffic.
type Ingestor struct {
	db       *gorm.DB
	resolver NameResolver
	prober   Prober
	opts     Options
}

func NewIngestor(db *gorm.DB, resolver NameResolver, prober Prober, opts Options) (*Ingestor, error) {
	if opts.Active && prober == nil {
		return nil, enrich.ErrNoCaptureInterface
	}
	if opts.Resolve && resolver == nil {
		return nil, fmt.Errorf("pipeline: resolution enabled without a resolver")
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultEnrichWorkers
	}

	return &Ingestor{
		db:       db,
		resolver: resolver,
		prober:   prober,
		opts:     opts,
	}, nil
}

// IngestBatch processes every event of a batch in order and waits for the
// enrichment the batch triggered before returning, so a report rendered
// afterwards sees settled state.
func (in *Ingestor) IngestBatch(ctx context.Context, batch []Request) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(in.opts.Workers)

	for _, request := range batch {
		if !in.opts.Filters.Accept(request.Sender, request.Target) {
			continue
		}

		sender, created, err := database.ResolveOrCreateAddress(in.db, request.Sender)
		if err != nil {
			return err
		}
		if created {
			in.enrich(group, groupCtx, sender, false)
		}

		target, created, err := database.ResolveOrCreateAddress(in.db, request.Target)
		if err != nil {
			return err
		}
		if created {
			in.enrich(group, groupCtx, target, true)
		}

		if _, err := database.RecordTransaction(in.db, sender, target); err != nil {
			return err
		}
	}

	return group.Wait()
}

// enrich schedules the one-time enrichment of a newly created address.
// Lookup failures are absence of data, never batch failures.
func (in *Ingestor) enrich(group *errgroup.Group, ctx context.Context, address domain.Address, isTarget bool) {
	resolve := in.opts.Resolve
	probe := in.opts.Active && isTarget
	if !resolve && !probe {
		return
	}

	group.Go(func() error {
		if resolve {
			name, err := in.resolver.Resolve(ctx, address.Value)
			if err != nil {
				log.Debug("No reverse name", "address", address.Value, "error", err)
			} else if name != "" {
				if err := database.AddReverseName(in.db, address.ID, name); err != nil {
					log.Error("Failed to store reverse name", "address", address.Value, "error", err)
				}
			}
		}

		if probe {
			mac, err := in.prober.Probe(ctx, address.Value)
			if err != nil {
				log.Debug("Probe failed", "address", address.Value, "error", err)
				mac = ""
			}
			if err := database.MarkProbeResult(in.db, address.ID, mac); err != nil {
				log.Error("Failed to store probe result", "address", address.Value, "error", err)
			}
		}

		return nil
	})
}
