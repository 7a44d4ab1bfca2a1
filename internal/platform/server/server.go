package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/ivanvallejoss/hr-system/internal/adapters/grpc/handler"
	"github.com/ivanvallejoss/hr-system/internal/platform/logging"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Server は gRPC サーバーのライフサイクルを管理します。
type Server struct {
	listenAddr string
	grpcServer *grpc.Server
}

// Option は Server 構築時の追加設定です。
type Option func(*options)

type options struct {
	interceptors []grpc.UnaryServerInterceptor
	logger       logrus.FieldLogger
	serverOpts   []grpc.ServerOption
}

// WithUnaryInterceptor はアクター解決より前に実行するインターセプターを追加します。
func WithUnaryInterceptor(i grpc.UnaryServerInterceptor) Option {
	return func(o *options) {
		o.interceptors = append(o.interceptors, i)
	}
}

// WithLogger はアクセスログの出力先を指定します。
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithServerOption は grpc.ServerOption をそのまま渡します。
func WithServerOption(opt grpc.ServerOption) Option {
	return func(o *options) {
		o.serverOpts = append(o.serverOpts, opt)
	}
}

// New は指定されたアドレスで待ち受ける gRPC サーバーを構築します。
// インターセプターは追加分、アクター解決、アクセスログの順に実行されます。
func New(listenAddr string, hr handler.HRServiceServer, opts ...Option) *Server {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	chain := append([]grpc.UnaryServerInterceptor{}, o.interceptors...)
	chain = append(chain, handler.ActorInterceptor(), LoggingInterceptor(o.logger))

	serverOpts := append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(chain...)}, o.serverOpts...)
	srv := grpc.NewServer(serverOpts...)
	handler.RegisterHRServiceServer(srv, hr)

	return &Server{
		listenAddr: listenAddr,
		grpcServer: srv,
	}
}

// LoggingInterceptor は RPC ごとに 1 行のアクセスログを出力します。
func LoggingInterceptor(logger logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, next grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := next(ctx, req)

		code := status.Code(err)
		entry := logger.WithFields(logrus.Fields{
			"method":      info.FullMethod,
			"code":        code.String(),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		if a, ok := handler.ActorFromContext(ctx); ok {
			entry = entry.WithField("actor_id", a.UserID)
		}

		switch code {
		case codes.OK:
			entry.Info("rpc_completed")
		case codes.Internal, codes.Unknown, codes.Unavailable:
			entry.Error("rpc_completed")
		default:
			entry.Warn("rpc_completed")
		}
		return resp, err
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

// Serve は与えられたリスナーで待ち受けます。
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go func() {
		<-ctx.Done()
		s.grpcServer.GracefulStop()
	}()

	if err := s.grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	return nil
}

// GracefulStop はサーバーを安全に停止します。
func (s *Server) GracefulStop() {
	s.grpcServer.GracefulStop()
}
