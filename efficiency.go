package knngraph

import (
	"context"
	"time"

	"github.com/hupe1980/knngraph/dataset"
	"github.com/hupe1980/knngraph/index"
	"github.com/hupe1980/knngraph/recall"
)

// DefaultDataUse is the fraction of the data timed by TestEfficiency.
const DefaultDataUse = 0.1

// TestEfficiency compares the fitted index against exact brute-force search.
//
// Every row of in is queried against the index and against an exact
// baseline over the fitted data, both with k+1 neighbors, and the mean
// per-query recall is reported. A random dataUse fraction of the rows is
// additionally timed on its own. A dataUse <= 0 uses DefaultDataUse.
func (t *Transformer) TestEfficiency(ctx context.Context, in any, dataUse float64) (recall.Report, error) {
	if dataUse <= 0 {
		dataUse = DefaultDataUse
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.index == nil {
		return recall.Report{}, ErrNotFitted
	}

	queries, _, err := t.prepare(ctx, in)
	if err != nil {
		return recall.Report{}, translateError(err)
	}
	if queries, err = dataset.Conform(queries, t.fitted); err != nil {
		return recall.Report{}, translateError(err)
	}

	k := t.k + 1
	threads := t.threads()
	qp := index.QueryParams{EfSearch: t.opts.efSearch}
	report := recall.Report{Queries: queries.Len()}

	sample := recall.Sample(queries.Len(), dataUse, t.opts.seed)
	report.SampleSize = len(sample)
	if len(sample) > 0 {
		start := time.Now()
		if _, err := t.index.KNNQueryBatch(ctx, queries.Subset(sample), k, qp, threads); err != nil {
			return recall.Report{}, translateError(err)
		}
		report.SampleTime = time.Since(start)
	}

	start := time.Now()
	approx, err := t.index.KNNQueryBatch(ctx, queries, k, qp, threads)
	report.ANNTime = time.Since(start)
	t.opts.metricsCollector.RecordQuery(queries.Len(), k, report.ANNTime, err)
	t.logger.LogQuery(ctx, queries.Len(), threads, report.ANNTime, err)
	if err != nil {
		return recall.Report{}, translateError(err)
	}

	start = time.Now()
	exact := recall.NewExact(t.space)
	if err := exact.Fit(ctx, t.fitted); err != nil {
		return recall.Report{}, translateError(err)
	}
	truth, err := exact.KNeighbors(ctx, queries, k, threads)
	if err != nil {
		return recall.Report{}, translateError(err)
	}
	report.ExactTime = time.Since(start)
	t.logger.InfoContext(ctx, "brute-force kNN completed",
		"total", report.ExactTime,
		"per_query", report.ExactTime/time.Duration(max(queries.Len(), 1)),
	)

	got := make([][]uint32, len(approx))
	want := make([][]uint32, len(truth))
	for i := range approx {
		got[i] = approx[i].IDs()
		want[i] = truth[i].IDs()
	}
	report.Recall = recall.Score(got, want)

	t.opts.metricsCollector.RecordRecall(report.Recall, report.Queries)
	t.logger.InfoContext(ctx, "kNN recall", "report", report)
	return report, nil
}
