package cart

import (
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type storeMetrics struct {
	added   metric.Int64Counter
	removed metric.Int64Counter
	orders  metric.Int64Counter
}

func newStoreMetrics(log logrus.FieldLogger) *storeMetrics {
	m, err := buildStoreMetrics(otel.Meter("cart"))
	if err != nil {
		log.WithError(err).Warn("cart metrics unavailable")
		m, _ = buildStoreMetrics(noop.NewMeterProvider().Meter("cart"))
	}
	return m
}

func buildStoreMetrics(meter metric.Meter) (*storeMetrics, error) {
	added, err := meter.Int64Counter("cart.items.added",
		metric.WithDescription("Items appended to carts"))
	if err != nil {
		return nil, err
	}
	removed, err := meter.Int64Counter("cart.items.removed",
		metric.WithDescription("Items removed from carts by control or swipe"))
	if err != nil {
		return nil, err
	}
	orders, err := meter.Int64Counter("cart.orders.placed",
		metric.WithDescription("Confirmed checkouts"))
	if err != nil {
		return nil, err
	}
	return &storeMetrics{added: added, removed: removed, orders: orders}, nil
}
