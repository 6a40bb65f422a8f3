package resilience

import (
	"context"
	"errors"
	"time"

	"gooey-backend/application/ports"
	"gooey-backend/domain/core/entities"
	"gooey-backend/domain/core/valueobjects"
	pkgerrors "gooey-backend/pkg/errors"
	"gooey-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the node store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
}

// DefaultBreakerConfig returns the default breaker configuration
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		MaxFailures: 5,
	}
}

// BreakerNodeRepository guards a NodeRepository with a circuit breaker so a
// failing store fails placements fast instead of piling up commits
type BreakerNodeRepository struct {
	next    ports.NodeRepository
	cb      *gobreaker.CircuitBreaker
	name    string
	metrics *observability.Collector
}

var _ ports.NodeRepository = (*BreakerNodeRepository)(nil)

// NewBreakerNodeRepository wraps next
func NewBreakerNodeRepository(next ports.NodeRepository, cfg BreakerConfig, metrics *observability.Collector, logger *zap.Logger) *BreakerNodeRepository {
	r := &BreakerNodeRepository{next: next, name: cfg.Name, metrics: metrics}

	r.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetBreakerState(name, float64(to))
		},
		// A missing node is an answer, not a store failure.
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsNotFound(err)
		},
	})
	metrics.SetBreakerState(cfg.Name, float64(gobreaker.StateClosed))

	return r
}

// State reports the breaker's current state
func (r *BreakerNodeRepository) State() gobreaker.State {
	return r.cb.State()
}

// Save persists a node through the breaker
func (r *BreakerNodeRepository) Save(ctx context.Context, node *entities.Node) error {
	_, err := r.execute("save", func() (interface{}, error) {
		return nil, r.next.Save(ctx, node)
	})
	return err
}

// GetByID retrieves a node through the breaker
func (r *BreakerNodeRepository) GetByID(ctx context.Context, id valueobjects.NodeID) (*entities.Node, error) {
	result, err := r.execute("get", func() (interface{}, error) {
		return r.next.GetByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*entities.Node), nil
}

// GetBySpaceID lists a space's nodes through the breaker
func (r *BreakerNodeRepository) GetBySpaceID(ctx context.Context, spaceID valueobjects.SpaceID) ([]*entities.Node, error) {
	result, err := r.execute("list", func() (interface{}, error) {
		return r.next.GetBySpaceID(ctx, spaceID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*entities.Node), nil
}

// Delete removes a node through the breaker
func (r *BreakerNodeRepository) Delete(ctx context.Context, node *entities.Node) error {
	_, err := r.execute("delete", func() (interface{}, error) {
		return nil, r.next.Delete(ctx, node)
	})
	return err
}

func (r *BreakerNodeRepository) execute(op string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := r.cb.Execute(fn)
	r.metrics.RecordDB(op, r.name, time.Since(start), err)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, pkgerrors.NewUnavailableError(r.name).WithCause(err)
	}
	return result, err
}
