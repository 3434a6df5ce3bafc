package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// HealthClient checks the store's gRPC health service.
type HealthClient struct {
	conn    *grpc.ClientConn
	client  healthpb.HealthClient
	service string
}

// NewHealthClient connects lazily to target. Extra dial options are
// appended after the default insecure transport credentials.
func NewHealthClient(target string, opts ...grpc.DialOption) (*HealthClient, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, err
	}
	return &HealthClient{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

func (s *HealthClient) Close() error {
	return s.conn.Close()
}

// Ping succeeds only when the store reports SERVING.
func (s *HealthClient) Ping(ctx context.Context) error {
	resp, err := s.client.Check(ctx, &healthpb.HealthCheckRequest{Service: s.service})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}

	return nil
}

func (s *HealthClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return ErrAborted
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Canceled:
		return ErrAborted
	case codes.Unavailable, codes.DeadlineExceeded, codes.NotFound:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
