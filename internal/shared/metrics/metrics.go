package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	assessmentsStartedTotal   atomic.Uint64
	assessmentsCompletedTotal atomic.Uint64
	assessmentsResetTotal     atomic.Uint64
	answersSubmittedTotal     atomic.Uint64
	answersRejectedTotal      atomic.Uint64
	reportJobsReceivedTotal   atomic.Uint64
	reportJobsCompletedTotal  atomic.Uint64
	reportJobsFailedTotal     atomic.Uint64

	recommendationsIssued = newLabeledCounter()

	evaluationDuration = newHistogram([]float64{0.05, 0.1, 0.25, 0.5, 1, 5, 25, 100})
)

func IncAssessmentStarted()   { assessmentsStartedTotal.Add(1) }
func IncAssessmentCompleted() { assessmentsCompletedTotal.Add(1) }
func IncAssessmentReset()     { assessmentsResetTotal.Add(1) }
func IncAnswerSubmitted()     { answersSubmittedTotal.Add(1) }
func IncAnswerRejected()      { answersRejectedTotal.Add(1) }
func IncReportJobReceived()   { reportJobsReceivedTotal.Add(1) }
func IncReportJobCompleted()  { reportJobsCompletedTotal.Add(1) }
func IncReportJobFailed()     { reportJobsFailedTotal.Add(1) }

// IncRecommendationIssued counts one recommendation of the given policy.
func IncRecommendationIssued(policy string) {
	recommendationsIssued.Inc(policy)
}

// ObserveEvaluationDurationMs records a rule evaluation duration in milliseconds.
func ObserveEvaluationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	evaluationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "assessments_started_total", "Total assessments started", assessmentsStartedTotal.Load())
	writeCounter(&buf, "assessments_completed_total", "Total assessments completed", assessmentsCompletedTotal.Load())
	writeCounter(&buf, "assessments_reset_total", "Total assessment resets", assessmentsResetTotal.Load())
	writeCounter(&buf, "answers_submitted_total", "Total answers accepted", answersSubmittedTotal.Load())
	writeCounter(&buf, "answers_rejected_total", "Total answers rejected as invalid", answersRejectedTotal.Load())
	writeCounter(&buf, "report_jobs_received_total", "Total report jobs received", reportJobsReceivedTotal.Load())
	writeCounter(&buf, "report_jobs_completed_total", "Total report jobs completed", reportJobsCompletedTotal.Load())
	writeCounter(&buf, "report_jobs_failed_total", "Total report jobs failed", reportJobsFailedTotal.Load())
	writeLabeledCounter(&buf, "recommendations_issued_total", "Recommendations issued by policy", "policy", recommendationsIssued.Snapshot())
	writeHistogram(&buf, "recommendation_evaluation_duration_ms", "Rule evaluation duration in milliseconds", evaluationDuration.Snapshot())
	return buf.String()
}

type labeledCounter struct {
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter() *labeledCounter {
	return &labeledCounter{values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(label string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values[label]++
}

func (l *labeledCounter) Snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

// Observe records value in the first bucket that holds it; Render accumulates.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeledCounter(buf *bytes.Buffer, name, help, label string, values map[string]uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, label, k, values[k])
	}
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
