package server

import (
	"context"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/legal-translator/internal/common"
	"github.com/joseph-ayodele/legal-translator/internal/entity"
)

const (
	PipelineServiceName = "legaltr.v1.PipelineService"
	MethodStart         = "/" + PipelineServiceName + "/Start"
	MethodGetStatus     = "/" + PipelineServiceName + "/GetStatus"
)

// PipelineServer serves Start and GetStatus over gRPC. Requests and replies are
// google.protobuf.Struct values: {"job_id": "..."} in, the job summary out.
type PipelineServer interface {
	Start(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

var pipelineServiceDesc = grpc.ServiceDesc{
	ServiceName: PipelineServiceName,
	HandlerType: (*PipelineServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Start", Handler: unaryHandler(MethodStart, PipelineServer.Start)},
		{MethodName: "GetStatus", Handler: unaryHandler(MethodGetStatus, PipelineServer.GetStatus)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "legaltr/v1/pipeline.proto",
}

func unaryHandler(fullMethod string, call func(PipelineServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PipelineServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PipelineServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

type pipelineService struct {
	pipeline   Pipeline
	jobTimeout time.Duration
	logger     *slog.Logger
}

// NewPipelineService serves p. jobTimeout bounds each Start; zero means unbounded.
func NewPipelineService(p Pipeline, jobTimeout time.Duration, logger *slog.Logger) PipelineServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &pipelineService{pipeline: p, jobTimeout: jobTimeout, logger: logger}
}

func jobIDFrom(req *structpb.Struct) (uuid.UUID, error) {
	raw := strings.TrimSpace(req.GetFields()["job_id"].GetStringValue())
	if raw == "" {
		return uuid.Nil, common.InvalidArgumentError("job_id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, common.InvalidArgumentError("job_id must be a UUID")
	}
	return id, nil
}

func (s *pipelineService) Start(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := jobIDFrom(req)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := runContext(ctx, s.jobTimeout)
	defer cancel()
	sum, err := s.pipeline.Start(runCtx, id)
	if err != nil {
		s.logger.Warn("grpc start failed", "job_id", id, "error", err)
		return nil, common.ToStatus(err)
	}
	return summaryStruct(sum)
}

func (s *pipelineService) GetStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := jobIDFrom(req)
	if err != nil {
		return nil, err
	}
	sum, err := s.pipeline.GetStatus(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return summaryStruct(sum)
}

func summaryStruct(sum entity.JobSummary) (*structpb.Struct, error) {
	m := map[string]any{
		"job_id":         sum.JobID.String(),
		"status":         string(sum.Status),
		"progress":       sum.Progress,
		"output_file_id": nil,
		"error_message":  nil,
	}
	if sum.OutputFileID != nil {
		m["output_file_id"] = sum.OutputFileID.String()
	}
	if sum.ErrorMessage != nil {
		m["error_message"] = *sum.ErrorMessage
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode summary: %v", err)
	}
	return out, nil
}

// GRPCServer bundles the gRPC server with its health service.
type GRPCServer struct {
	Server *grpc.Server
	Health *health.Server
	logger *slog.Logger
}

func NewGRPCServer(p Pipeline, jobTimeout time.Duration, logger *slog.Logger, opts ...grpc.ServerOption) *GRPCServer {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(opts...)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(PipelineServiceName, healthpb.HealthCheckResponse_SERVING)
	// Reflection for grpcurl
	reflection.Register(gs)
	gs.RegisterService(&pipelineServiceDesc, NewPipelineService(p, jobTimeout, logger))
	return &GRPCServer{Server: gs, Health: hs, logger: logger}
}

func (g *GRPCServer) Serve(lis net.Listener) error {
	g.logger.Info("grpc serving", "addr", lis.Addr().String())
	return g.Server.Serve(lis)
}

func (g *GRPCServer) Stop() {
	g.Health.Shutdown()
	g.Server.GracefulStop()
}
