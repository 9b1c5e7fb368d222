package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/ogurasousui/shop-crew-clock/internal/adapters/grpc/handler"
)

// Services はサーバーに登録する gRPC 実装の集合です。nil のサービスは登録しません。
type Services struct {
	Crew       handler.CrewServiceServer
	TimeClock  handler.TimeClockServiceServer
	Timesheet  handler.TimesheetServiceServer
	Invitation handler.InvitationServiceServer
	Activity   handler.ActivityServiceServer
}

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
	health     *health.Server
	logger     zerolog.Logger
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
// リクエストごとにロガーとメタデータ x-crew-id のクルーをコンテキストへ載せます。
func New(listenAddr string, services Services, logger zerolog.Logger, opts ...grpc.ServerOption) *Server {
	opts = append([]grpc.ServerOption{
		grpc.ChainUnaryInterceptor(LoggingInterceptor(logger), SessionInterceptor()),
	}, opts...)
	srv := grpc.NewServer(opts...)

	if services.Crew != nil {
		handler.RegisterCrewServiceServer(srv, services.Crew)
	}
	if services.TimeClock != nil {
		handler.RegisterTimeClockServiceServer(srv, services.TimeClock)
	}
	if services.Timesheet != nil {
		handler.RegisterTimesheetServiceServer(srv, services.Timesheet)
	}
	if services.Invitation != nil {
		handler.RegisterInvitationServiceServer(srv, services.Invitation)
	}
	if services.Activity != nil {
		handler.RegisterActivityServiceServer(srv, services.Activity)
	}

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(srv, healthSrv)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
		health:     healthSrv,
		logger:     logger,
	}
}

// Run はサーバーを起動し、コンテキストがキャンセルされると GracefulStop します。
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.listenAddr, err)
	}
	return s.Serve(ctx, lis)
}

// Serve は既存のリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.GracefulStop()
	}()

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.logger.Info().Str("addr", lis.Addr().String()).Msg("gRPC server listening")

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
