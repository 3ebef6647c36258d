package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	matchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gincana",
		Name:      "matches_created_total",
		Help:      "Matches created, by mode.",
	}, []string{"mode"})

	matchesFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gincana",
		Name:      "matches_finished_total",
		Help:      "Matches that reached the finished state, by reason.",
	}, []string{"reason"})

	answers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gincana",
		Name:      "answers_total",
		Help:      "Submitted answers, by correctness.",
	}, []string{"correct"})

	draws = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gincana",
		Name:      "draws_total",
		Help:      "Question draws, by result (drawn or exhausted).",
	}, []string{"result"})

	skips = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gincana",
		Name:      "skips_total",
		Help:      "Skips granted within quota.",
	})
)

func MatchCreated(mode string) { matchesCreated.WithLabelValues(mode).Inc() }

func MatchFinished(reason string) { matchesFinished.WithLabelValues(reason).Inc() }

func AnswerSubmitted(correct bool) {
	answers.WithLabelValues(strconv.FormatBool(correct)).Inc()
}

// QuestionDrawn counts a draw under "drawn" or "exhausted".
func QuestionDrawn(exhausted bool) {
	if exhausted {
		draws.WithLabelValues("exhausted").Inc()
		return
	}
	draws.WithLabelValues("drawn").Inc()
}

func SkipGranted() { skips.Inc() }
