package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MarkoPoloResearchLab/enumroute/pkg/ginroute"
)

const (
	metricsNamespace            = "enumroute"
	metricNameEvaluations       = "route_constraint_evaluations_total"
	metricHelpEvaluations       = "Route constraint evaluations by route, constraint, direction and outcome."
	metricLabelRoute            = "route"
	metricLabelConstraint       = "constraint"
	metricLabelDirection        = "direction"
	metricLabelOutcome          = "outcome"
	metricOutcomeAccepted       = "accepted"
	metricOutcomeRejected       = "rejected"
	metricUnnamedRouteLabelText = "unnamed"
)

// ConstraintMetrics counts route constraint evaluations. It implements ginroute.Observer.
type ConstraintMetrics struct {
	gatherer    prometheus.Gatherer
	evaluations *prometheus.CounterVec
}

// NewConstraintMetrics registers the constraint counters with registry.
func NewConstraintMetrics(registry *prometheus.Registry) (*ConstraintMetrics, error) {
	evaluations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      metricNameEvaluations,
		Help:      metricHelpEvaluations,
	}, []string{metricLabelRoute, metricLabelConstraint, metricLabelDirection, metricLabelOutcome})
	if registerErr := registry.Register(evaluations); registerErr != nil {
		return nil, registerErr
	}
	return &ConstraintMetrics{gatherer: registry, evaluations: evaluations}, nil
}

// ObserveConstraint records one evaluation.
func (metrics *ConstraintMetrics) ObserveConstraint(evaluation ginroute.Evaluation) {
	routeLabel := evaluation.RouteName
	if routeLabel == "" {
		routeLabel = metricUnnamedRouteLabelText
	}
	outcome := metricOutcomeRejected
	if evaluation.Accepted {
		outcome = metricOutcomeAccepted
	}
	metrics.evaluations.WithLabelValues(routeLabel, evaluation.ConstraintToken, evaluation.Direction.String(), outcome).Inc()
}

// Evaluations exposes the counter vector for inspection.
func (metrics *ConstraintMetrics) Evaluations() *prometheus.CounterVec {
	return metrics.evaluations
}

// Handler serves the registry in the Prometheus exposition format.
func (metrics *ConstraintMetrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(metrics.gatherer, promhttp.HandlerOpts{}))
}
