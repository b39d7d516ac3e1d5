package delivery

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/labnet/testorders/links"
	"github.com/labnet/testorders/patients"
)

type DispatcherParams struct {
	fx.In

	Transport Transport
	Metrics   *Metrics
	Logger    *zap.SugaredLogger
}

func NewDispatcher(p DispatcherParams) Dispatcher {
	return &dispatcher{
		transport: p.Transport,
		metrics:   p.Metrics,
		logger:    p.Logger,
	}
}

type dispatcher struct {
	transport Transport
	metrics   *Metrics
	logger    *zap.SugaredLogger
}

func (d *dispatcher) Dispatch(ctx context.Context, preference patients.DeliveryPreference, link links.Link) bool {
	switch preference {
	case patients.DeliveryPreferenceSMS:
		return d.send(ctx, ChannelSMS, link)
	case patients.DeliveryPreferenceEmail:
		return d.send(ctx, ChannelEmail, link)
	case patients.DeliveryPreferenceAll:
		sms := d.send(ctx, ChannelSMS, link)
		email := d.send(ctx, ChannelEmail, link)
		return sms && email
	default:
		return true
	}
}

func (d *dispatcher) send(ctx context.Context, channel Channel, link links.Link) bool {
	var err error
	switch channel {
	case ChannelSMS:
		err = d.transport.SendSMS(ctx, link.Id)
	case ChannelEmail:
		err = d.transport.SendEmail(ctx, link.Id)
	}

	d.metrics.observe(channel, err == nil)
	if err != nil {
		d.logger.Warnw("unable to deliver result", "channel", channel, "linkId", link.Id, "orderId", link.OrderId.Hex(), zap.Error(err))
		return false
	}

	d.logger.Infow("delivered result", "channel", channel, "linkId", link.Id, "orderId", link.OrderId.Hex())
	return true
}
