package routing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
	"github.com/andrescamacho/seafaring-go/internal/domain/shipping"
)

// ShipPositionSource places ships on the map; the remote service only knows ports
type ShipPositionSource interface {
	ShipPosition(id shared.ShipID) (shared.Position, bool)
}

// GRPCOptions tunes the remote oracle client
type GRPCOptions struct {
	CallTimeout       time.Duration
	RequestsPerSecond float64
	Burst             int
	// BreakerFailures consecutive failures open the circuit for
	// BreakerCooldown; while open every call goes to the fallback
	BreakerFailures int
	BreakerCooldown time.Duration
}

// GRPCCostOracle implements shipping.CostOracle by asking a remote cost
// service. Calls are rate limited and guarded by a circuit breaker. A failed
// call is answered by the fallback oracle so the scheduler never sees an error.
type GRPCCostOracle struct {
	conn     *grpc.ClientConn
	invoker  grpc.ClientConnInterface
	ships    ShipPositionSource
	fallback shipping.CostOracle
	limiter  *rate.Limiter
	breaker  *CircuitBreaker
	timeout  time.Duration
	logger   shipping.Logger
	failures int
}

// NewGRPCCostOracle connects to the cost service at address
func NewGRPCCostOracle(address string, ships ShipPositionSource, fallback shipping.CostOracle, opts GRPCOptions, logger shipping.Logger) (*GRPCCostOracle, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cost oracle at %s: %w", address, err)
	}
	o := NewGRPCCostOracleWithConn(conn, ships, fallback, opts, logger)
	o.conn = conn
	return o, nil
}

// NewGRPCCostOracleWithConn builds the client over an existing connection
func NewGRPCCostOracleWithConn(cc grpc.ClientConnInterface, ships ShipPositionSource, fallback shipping.CostOracle, opts GRPCOptions, logger shipping.Logger) *GRPCCostOracle {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := opts.CallTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	failures := opts.BreakerFailures
	if failures <= 0 {
		failures = 5
	}
	cooldown := opts.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 10 * time.Second
	}
	return &GRPCCostOracle{
		invoker:  cc,
		ships:    ships,
		fallback: fallback,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  NewCircuitBreaker(failures, cooldown, nil),
		timeout:  timeout,
		logger:   logger,
	}
}

// Close closes the gRPC connection
func (o *GRPCCostOracle) Close() error {
	if o.conn != nil {
		return o.conn.Close()
	}
	return nil
}

// Failures counts the calls answered by the fallback
func (o *GRPCCostOracle) Failures() int {
	return o.failures
}

func (o *GRPCCostOracle) PortToPort(from, to shared.PortID) shared.Duration {
	if from == to {
		return 0
	}
	cost, err := o.Cost(context.Background(), map[string]interface{}{
		FieldFromPort: float64(from),
		FieldToPort:   float64(to),
	})
	if err != nil {
		o.fail(err)
		if o.fallback == nil {
			return Unreachable
		}
		return o.fallback.PortToPort(from, to)
	}
	return cost
}

func (o *GRPCCostOracle) ShipToPort(ship shared.ShipID, to shared.PortID) shared.Duration {
	pos, ok := o.ships.ShipPosition(ship)
	if !ok {
		return Unreachable
	}
	cost, err := o.Cost(context.Background(), map[string]interface{}{
		FieldFromX:  pos.X,
		FieldFromY:  pos.Y,
		FieldToPort: float64(to),
	})
	if err != nil {
		o.fail(err)
		if o.fallback == nil {
			return Unreachable
		}
		return o.fallback.ShipToPort(ship, to)
	}
	return cost
}

// Cost performs one rate-limited Cost call through the circuit breaker
func (o *GRPCCostOracle) Cost(ctx context.Context, fields map[string]interface{}) (shared.Duration, error) {
	req, err := structpb.NewStruct(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to build cost request: %w", err)
	}

	reply := new(durationpb.Duration)
	err = o.breaker.Call(func() error {
		ctx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		if err := o.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
		if err := o.invoker.Invoke(ctx, costMethod, req, reply); err != nil {
			return fmt.Errorf("gRPC Cost failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return shared.FromStd(reply.AsDuration()), nil
}

// BreakerState reports whether remote calls are currently attempted
func (o *GRPCCostOracle) BreakerState() CircuitState {
	return o.breaker.State()
}

func (o *GRPCCostOracle) fail(err error) {
	o.failures++
	if errors.Is(err, ErrCircuitOpen) {
		return
	}
	if o.logger != nil {
		o.logger.Log("WARNING", fmt.Sprintf("[CostOracle] Remote call failed, using fallback: %v", err), nil)
	}
}
