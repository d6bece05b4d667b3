// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package metric provides the prometheus collectors observing migration
// runs and step actions.
package metric

import (
	"time"

	"github.com/hashicorp/stepledger/globals"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	stepSubsystem = "step"
	runSubsystem  = "run"

	labelStatus    = "status"
	labelAction    = "action"
	labelOutcome   = "outcome"
	labelOperation = "operation"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Actions and operations observed by the collectors.
const (
	ActionApply      = "apply"
	ActionCompensate = "compensate"

	OperationMigrate = "migrate"
	OperationRevert  = "revert"
	OperationStatus  = "status"
)

var (
	statuses   = []string{"pending", "ok", "skipped", "error", "rollback", "rollback-error"}
	actions    = []string{ActionApply, ActionCompensate}
	operations = []string{OperationMigrate, OperationRevert, OperationStatus}
	outcomes   = []string{outcomeSuccess, outcomeFailure}
)

// stepTransitions counts the statuses steps were moved to.
var stepTransitions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: globals.MetricNamespace,
		Subsystem: stepSubsystem,
		Name:      "transitions_total",
		Help:      "Count of step status transitions, by resulting status.",
	},
	[]string{labelStatus},
)

// actionDuration collects measurements of how long apply and compensate
// actions take.
var actionDuration prometheus.ObserverVec = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: globals.MetricNamespace,
		Subsystem: stepSubsystem,
		Name:      "action_duration_seconds",
		Help:      "Histogram of durations of step apply and compensate actions.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{labelAction, labelOutcome},
)

// runs counts migrate, revert and status invocations.
var runs = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: globals.MetricNamespace,
		Subsystem: runSubsystem,
		Name:      "total",
		Help:      "Count of migrate, revert and status invocations, by outcome.",
	},
	[]string{labelOperation, labelOutcome},
)

// StepTransition records a step moving to status.
func StepTransition(status string) {
	stepTransitions.WithLabelValues(status).Inc()
}

// ObserveAction records the duration and outcome of a step action.
func ObserveAction(action string, d time.Duration, err error) {
	actionDuration.WithLabelValues(action, outcome(err)).Observe(d.Seconds())
}

// RunFinished records the outcome of an invocation.
func RunFinished(operation string, err error) {
	runs.WithLabelValues(operation, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return outcomeFailure
	}
	return outcomeSuccess
}

// InitializeCollectors registers the migration metrics to the prometheus
// register and initializes them to 0 for all possible label combinations.
func InitializeCollectors(r prometheus.Registerer) {
	if r == nil {
		return
	}
	r.MustRegister(stepTransitions, actionDuration.(prometheus.Collector), runs)
	for _, s := range statuses {
		stepTransitions.WithLabelValues(s)
	}
	for _, a := range actions {
		for _, o := range outcomes {
			actionDuration.WithLabelValues(a, o)
		}
	}
	for _, op := range operations {
		for _, o := range outcomes {
			runs.WithLabelValues(op, o)
		}
	}
}
