package routing

import (
	"context"
	"math"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/andrescamacho/seafaring-go/internal/domain/shared"
)

const (
	// CostServiceName is the fully qualified gRPC service name
	CostServiceName = "seafaring.routing.v1.CostOracle"
	costMethod      = "/" + CostServiceName + "/Cost"
)

// Request fields of the Cost call. A request names the target port and
// either a source port or a source position.
const (
	FieldFromPort = "from_port"
	FieldFromX    = "from_x"
	FieldFromY    = "from_y"
	FieldToPort   = "to_port"
)

// PortOracle answers cost questions that do not need to know about ships
type PortOracle interface {
	PortToPort(from, to shared.PortID) shared.Duration
	PositionToPort(from shared.Position, to shared.PortID) shared.Duration
}

// CostOracleService is the server API of the remote cost oracle
type CostOracleService interface {
	Cost(ctx context.Context, req *structpb.Struct) (*durationpb.Duration, error)
}

// CostOracleServer serves a PortOracle over gRPC
type CostOracleServer struct {
	oracle PortOracle
}

func NewCostOracleServer(oracle PortOracle) *CostOracleServer {
	return &CostOracleServer{oracle: oracle}
}

// Cost answers one travel-time question
func (s *CostOracleServer) Cost(ctx context.Context, req *structpb.Struct) (*durationpb.Duration, error) {
	fields := req.GetFields()
	to, ok := numberField(fields, FieldToPort)
	if !ok || to <= 0 {
		return nil, status.Error(codes.InvalidArgument, "to_port is required")
	}

	var cost shared.Duration
	if from, ok := numberField(fields, FieldFromPort); ok {
		cost = s.oracle.PortToPort(shared.PortID(from), shared.PortID(to))
	} else {
		x, okX := numberField(fields, FieldFromX)
		y, okY := numberField(fields, FieldFromY)
		if !okX || !okY {
			return nil, status.Error(codes.InvalidArgument, "from_port or from_x/from_y is required")
		}
		cost = s.oracle.PositionToPort(shared.Position{X: x, Y: y}, shared.PortID(to))
	}

	if cost >= Unreachable {
		return nil, status.Errorf(codes.NotFound, "no route to port %d", uint32(to))
	}
	return durationpb.New(cost.Std()), nil
}

func numberField(fields map[string]*structpb.Value, key string) (float64, bool) {
	v, ok := fields[key]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || math.IsNaN(n.NumberValue) {
		return 0, false
	}
	return n.NumberValue, true
}

// RegisterCostOracleServer registers the service on a gRPC server
func RegisterCostOracleServer(r grpc.ServiceRegistrar, srv CostOracleService) {
	r.RegisterService(&costOracleServiceDesc, srv)
}

func costHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CostOracleService).Cost(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: costMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CostOracleService).Cost(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

var costOracleServiceDesc = grpc.ServiceDesc{
	ServiceName: CostServiceName,
	HandlerType: (*CostOracleService)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Cost",
			Handler:    costHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "seafaring/routing/v1/cost_oracle.proto",
}
