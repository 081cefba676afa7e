package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthProber checks server reachability via the standard gRPC health
// service exposed next to the REST API.
type HealthProber struct {
	conn   *grpc.ClientConn
	health healthpb.HealthClient
}

func NewHealthProber(addr string) (*HealthProber, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create health client: %w", err)
	}
	return &HealthProber{conn: conn, health: healthpb.NewHealthClient(conn)}, nil
}

// Probe returns nil when the server reports SERVING.
func (p *HealthProber) Probe(ctx context.Context) error {
	resp, err := p.health.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%w: status %s", ErrUnavailable, resp.GetStatus())
	}
	return nil
}

func (p *HealthProber) Close() error {
	return p.conn.Close()
}

// Probe lets the REST client act as a reachability probe on its own.
func (c *HTTPClient) Probe(ctx context.Context) error {
	return c.Ping(ctx)
}
