package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/code19m/errx"
	"github.com/rise-and-shine/cmdgw/alert"
	"github.com/rise-and-shine/cmdgw/command"
	"github.com/rise-and-shine/cmdgw/logger"
	"github.com/rise-and-shine/cmdgw/meta"
)

const alertTimeout = 3 * time.Second

// AlertingGateway decorates a Gateway with error alerting. Exceptional
// outcomes are reported to the alert provider asynchronously on a detached
// context; the result surfaced to the caller is never altered.
type AlertingGateway struct {
	logger        logger.Logger
	alertProvider alert.Provider
	next          Gateway
}

// NewAlertingGateway creates an AlertingGateway over the next gateway.
func NewAlertingGateway(next Gateway, log logger.Logger, alertProvider alert.Provider) *AlertingGateway {
	return &AlertingGateway{
		logger:        log.Named("gateway.alerting"),
		alertProvider: alertProvider,
		next:          next,
	}
}

func (g *AlertingGateway) Send(ctx context.Context, cmd any, callback Callback) {
	g.next.Send(ctx, cmd, func(ctx context.Context, msg command.Message, result command.ResultMessage) {
		if result.IsExceptional() {
			g.sendAlert(ctx, msg.Name(), result.Err())
		}

		if callback != nil {
			callback(ctx, msg, result)
		}
	})
}

func (g *AlertingGateway) SendAndWait(ctx context.Context, cmd any) (any, error) {
	payload, err := g.next.SendAndWait(ctx, cmd)
	if err != nil {
		g.sendAlert(ctx, command.AsMessage(cmd).Name(), err)
	}
	return payload, err
}

func (g *AlertingGateway) SendAndWaitTimeout(ctx context.Context, cmd any, timeout time.Duration) (any, error) {
	payload, err := g.next.SendAndWaitTimeout(ctx, cmd, timeout)
	if err != nil {
		g.sendAlert(ctx, command.AsMessage(cmd).Name(), err)
	}
	return payload, err
}

func (g *AlertingGateway) sendAlert(ctx context.Context, cmdName string, err error) {
	e := errx.AsErrorX(err)

	operation := fmt.Sprintf("command: %s", cmdName)
	details := make(map[string]string)
	for k, v := range meta.ExtractMetaFromContext(ctx) {
		details[string(k)] = v
	}

	newCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertTimeout)

	go func() {
		defer cancel() // ensure newCtx is cancelled after sending alert

		sendErr := g.alertProvider.SendError(newCtx, e.Code(), err.Error(), operation, details)
		if sendErr != nil {
			g.logger.With("alert_send_error", sendErr).Warn("failed to send error alert")
		}
	}()
}
