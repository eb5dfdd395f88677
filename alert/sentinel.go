package alert

import (
	"context"
	"net"

	"github.com/code19m/errx"
	sentinelpb "github.com/code19m/sentinel/pb"
	"github.com/spf13/cast"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// SentinelProvider implements the Provider interface on top of the Sentinel
// alerting service. It owns the gRPC connection and identifies every alert
// with the dispatching service's name and version.
type SentinelProvider struct {
	cfg            Config
	serviceName    string
	serviceVersion string
	client         sentinelpb.SentinelServiceClient
	conn           *grpc.ClientConn
}

// NewSentinelProvider creates a SentinelProvider connected to the Sentinel
// service from cfg. If cfg.Disable is true the provider is inert and never
// dials out. Returns an error if the gRPC client cannot be created.
func NewSentinelProvider(cfg Config, serviceName, serviceVersion string) (*SentinelProvider, error) {
	if cfg.Disable {
		return &SentinelProvider{cfg: cfg}, nil
	}

	addr := net.JoinHostPort(cfg.SentinelHost, cast.ToString(cfg.SentinelPort))

	conn, err := grpc.NewClient(
		addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	return &SentinelProvider{
		cfg:            cfg,
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		client:         sentinelpb.NewSentinelServiceClient(conn),
		conn:           conn,
	}, nil
}

// SendError reports a command dispatch failure to Sentinel. The call is
// bounded by cfg.SendTimeout on a context detached from the caller's
// cancellation, so an aborted dispatch still gets its alert delivered.
// A disabled provider returns nil without doing anything.
func (sp *SentinelProvider) SendError(
	ctx context.Context,
	errCode, msg, operation string,
	details map[string]string,
) error {
	if sp.cfg.Disable {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sp.cfg.SendTimeout)
	defer cancel()

	if details == nil {
		details = make(map[string]string)
	}
	details["service_version"] = sp.serviceVersion

	_, err := sp.client.SendError(ctx, &sentinelpb.ErrorInfo{
		Code:      errCode,
		Message:   msg,
		Service:   sp.serviceName,
		Operation: operation,
		Details:   details,
	})

	return errx.Wrap(err)
}

// Close closes the gRPC connection to the Sentinel service.
// It should be called when the provider is no longer needed.
func (sp *SentinelProvider) Close() error {
	if sp.conn != nil {
		return sp.conn.Close()
	}
	return nil
}
