// Package metrics exposes Prometheus instruments for the ledger and its RPC surface.
//
// A nil *Metrics is valid and records nothing, so packages can accept one unconditionally.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "caja"

// Metrics holds every collector registered by the server.
type Metrics struct {
	registersOpened   *prometheus.CounterVec
	registersClosed   *prometheus.CounterVec
	cashDifference    *prometheus.GaugeVec
	transactions      *prometheus.CounterVec
	voids             *prometheus.CounterVec
	reconcileFailures *prometheus.CounterVec
	debtPayments      prometheus.Counter
	rpcRequests       *prometheus.CounterVec
	rpcDuration       *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		registersOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registers_opened_total",
			Help:      "Cash registers opened, by campus.",
		}, []string{"campus"}),
		registersClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registers_closed_total",
			Help:      "Cash registers closed, by campus.",
		}, []string{"campus"}),
		cashDifference: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "register_cash_difference",
			Help:      "Counted minus expected cash at the last close, by campus.",
		}, []string{"campus"}),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_recorded_total",
			Help:      "Transactions recorded, by type, payment method and paid state.",
		}, []string{"type", "method", "paid"}),
		voids: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_voided_total",
			Help:      "Transactions voided, by whether an offsetting entry was written.",
		}, []string{"offset"}),
		reconcileFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_failures_total",
			Help:      "Denomination breakdowns that did not add up, by operation.",
		}, []string{"operation"}),
		debtPayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "debt_payments_applied_total",
			Help:      "Payments applied to debts.",
		}),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPC requests handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency, by procedure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
	}

	reg.MustRegister(
		m.registersOpened,
		m.registersClosed,
		m.cashDifference,
		m.transactions,
		m.voids,
		m.reconcileFailures,
		m.debtPayments,
		m.rpcRequests,
		m.rpcDuration,
	)
	return m
}

func campusLabel(campusID int64) string {
	return strconv.FormatInt(campusID, 10)
}

func (m *Metrics) RegisterOpened(campusID int64) {
	if m == nil {
		return
	}
	m.registersOpened.WithLabelValues(campusLabel(campusID)).Inc()
}

// RegisterClosed counts a close and records the drawer difference.
func (m *Metrics) RegisterClosed(campusID int64, difference float64) {
	if m == nil {
		return
	}
	m.registersClosed.WithLabelValues(campusLabel(campusID)).Inc()
	m.cashDifference.WithLabelValues(campusLabel(campusID)).Set(difference)
}

func (m *Metrics) TransactionRecorded(txType, method string, paid bool) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(txType, method, strconv.FormatBool(paid)).Inc()
}

func (m *Metrics) TransactionVoided(offset bool) {
	if m == nil {
		return
	}
	m.voids.WithLabelValues(strconv.FormatBool(offset)).Inc()
}

func (m *Metrics) ReconcileFailed(operation string) {
	if m == nil {
		return
	}
	m.reconcileFailures.WithLabelValues(operation).Inc()
}

func (m *Metrics) DebtPaymentApplied() {
	if m == nil {
		return
	}
	m.debtPayments.Inc()
}

// ObserveRPC records one handled request.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
