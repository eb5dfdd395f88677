package gateway

import (
	"context"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/cmdgw/command"
	"github.com/rise-and-shine/cmdgw/logger"
)

// LoggingGateway decorates a Gateway with structured access logging. Each
// dispatch produces one log entry carrying the command name, execution time
// and, for failures, the errx error fields.
type LoggingGateway struct {
	logger logger.Logger
	next   Gateway
}

// NewLoggingGateway creates a LoggingGateway over the next gateway.
func NewLoggingGateway(next Gateway, log logger.Logger) *LoggingGateway {
	return &LoggingGateway{
		logger: log.Named("gateway.logger"),
		next:   next,
	}
}

func (g *LoggingGateway) Send(ctx context.Context, cmd any, callback Callback) {
	start := time.Now()

	g.next.Send(ctx, cmd, func(ctx context.Context, msg command.Message, result command.ResultMessage) {
		g.log(ctx, msg.Name(), time.Since(start), result.Err())

		if callback != nil {
			callback(ctx, msg, result)
		}
	})
}

func (g *LoggingGateway) SendAndWait(ctx context.Context, cmd any) (any, error) {
	start := time.Now()

	payload, err := g.next.SendAndWait(ctx, cmd)

	g.log(ctx, command.AsMessage(cmd).Name(), time.Since(start), err)
	return payload, err
}

func (g *LoggingGateway) SendAndWaitTimeout(ctx context.Context, cmd any, timeout time.Duration) (any, error) {
	start := time.Now()

	payload, err := g.next.SendAndWaitTimeout(ctx, cmd, timeout)

	g.log(ctx, command.AsMessage(cmd).Name(), time.Since(start), err)
	return payload, err
}

func (g *LoggingGateway) log(ctx context.Context, cmdName string, duration time.Duration, err error) {
	log := g.logger.
		WithContext(ctx).
		With("command_name", cmdName).
		With("execution_time", duration.String())

	if err != nil {
		e := errx.AsErrorX(err)
		log.With("error", map[string]any{
			"code":    e.Code(),
			"message": e.Error(),
			"type":    e.Type().String(),
			"trace":   e.Trace(),
			"fields":  e.Fields(),
			"details": e.Details(),
		}).Error("command dispatch completed")
		return
	}

	log.Info("command dispatch completed")
}
