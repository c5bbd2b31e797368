package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/AndreyChufelin/kbpanel/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

func withCredential(ctx context.Context, tokens TokenSource, log *logger.Logger) context.Context {
	token, ok := lookupToken(ctx, tokens, log)
	if !ok {
		return ctx
	}
	return metadata.AppendToOutgoingContext(ctx, MetadataAuthorization, Credential(token))
}

// httpStatus maps the gRPC codes that mean 401 and 403.
func httpStatus(err error) (int, bool) {
	switch status.Code(err) {
	case codes.Unauthenticated:
		return http.StatusUnauthorized, true
	case codes.PermissionDenied:
		return http.StatusForbidden, true
	default:
		return 0, false
	}
}

func notifyGRPC(err error, method string, signals Publisher, log *logger.Logger) {
	if code, ok := httpStatus(err); ok {
		publish(signals, log, Unauthorized{Status: code, Method: "grpc", Target: method})
	}
}

func UnaryClientInterceptor(tokens TokenSource, signals Publisher, log *logger.Logger) grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req any,
		reply any,
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		err := invoker(withCredential(ctx, tokens, log), method, req, reply, cc, opts...)
		notifyGRPC(err, method, signals, log)
		return err
	}
}

func StreamClientInterceptor(tokens TokenSource, signals Publisher, log *logger.Logger) grpc.StreamClientInterceptor {
	return func(
		ctx context.Context,
		desc *grpc.StreamDesc,
		cc *grpc.ClientConn,
		method string,
		streamer grpc.Streamer,
		opts ...grpc.CallOption,
	) (grpc.ClientStream, error) {
		stream, err := streamer(withCredential(ctx, tokens, log), desc, cc, method, opts...)
		if err != nil {
			notifyGRPC(err, method, signals, log)
			return nil, err
		}
		return &observedStream{ClientStream: stream, notify: func(err error) {
			notifyGRPC(err, method, signals, log)
		}}, nil
	}
}

type observedStream struct {
	grpc.ClientStream
	notify func(error)
}

func (s *observedStream) RecvMsg(m any) error {
	err := s.ClientStream.RecvMsg(m)
	if err != nil && !errors.Is(err, io.EOF) {
		s.notify(err)
	}
	return err
}

// GRPCClient holds a connection to a gRPC upstream whose calls go through the
// auth interceptors.
type GRPCClient struct {
	logger  *logger.Logger
	addr    string
	tokens  TokenSource
	signals Publisher
	conn    *grpc.ClientConn
}

func NewGRPCClient(log *logger.Logger, host, port string, tokens TokenSource, signals Publisher) *GRPCClient {
	return &GRPCClient{
		logger:  log,
		addr:    net.JoinHostPort(host, port),
		tokens:  tokens,
		signals: signals,
	}
}

func (c *GRPCClient) Start() error {
	conn, err := grpc.NewClient(
		c.addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(UnaryClientInterceptor(c.tokens, c.signals, c.logger)),
		grpc.WithChainStreamInterceptor(StreamClientInterceptor(c.tokens, c.signals, c.logger)),
	)
	if err != nil {
		c.logger.Error("failed to create upstream grpc client", "addr", c.addr, "error", err)
		return fmt.Errorf("failed to create grpc client: %w", err)
	}

	c.conn = conn

	return nil
}

var ErrNotStarted = errors.New("grpc client not started")

// Health asks the upstream health service about service. An empty name
// covers the whole server.
func (c *GRPCClient) Health(ctx context.Context, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	if c.conn == nil {
		return healthpb.HealthCheckResponse_UNKNOWN, ErrNotStarted
	}

	resp, err := healthpb.NewHealthClient(c.conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check failed: %w", err)
	}
	return resp.GetStatus(), nil
}

func (c *GRPCClient) Conn() *grpc.ClientConn {
	return c.conn
}

func (c *GRPCClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	if err != nil {
		return fmt.Errorf("failed to close grpc client: %w", err)
	}

	return nil
}
