package review

import (
	"context"
	"fmt"

	"github.com/quizforge/dupereview/internal/backend"
	"github.com/quizforge/dupereview/internal/model"
	"github.com/quizforge/dupereview/internal/worker"
)

// Coordinator commits a page's decisions to the backing store in
// bounded batches: groups within a batch run concurrently, batches run
// strictly in sequence. A failed group aborts the remaining batches and
// leaves earlier batches committed; partial commit is reported, never
// rolled back.
type Coordinator struct {
	backend     backend.Backend
	concurrency int
}

// NewCoordinator creates a submission coordinator
func NewCoordinator(b backend.Backend, concurrency int) *Coordinator {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Coordinator{backend: b, concurrency: concurrency}
}

// PageResult aggregates what a page submission achieved
type PageResult struct {
	Deltas    model.SubmitResult
	Submitted []int // group ids committed, in completion order
	Final     map[model.RecordID]bool
}

// batchSize scales with page size: small pages submit in small batches
// for responsiveness, large pages in bigger ones for throughput.
// Tunable, not correctness-bearing.
func batchSize(pageSize int) int {
	n := pageSize / 5
	if n < 2 {
		n = 2
	}
	if n > 10 {
		n = 10
	}
	return n
}

// submitJob commits one group
type submitJob struct {
	backend backend.Backend
	subject string
	groupID int
	kept    []model.RecordID
}

type submitOutcome struct {
	groupID int
	deltas  *model.SubmitResult
	err     error
}

func (o *submitOutcome) GetError() error { return o.err }

func (j *submitJob) Execute(ctx context.Context) worker.Result {
	deltas, err := j.backend.SubmitGroup(ctx, j.subject, j.groupID, j.kept)
	return &submitOutcome{groupID: j.groupID, deltas: deltas, err: err}
}

// SubmitPage resolves the page's final states and commits every group.
// The final state ORs a record's decision across all groups containing
// it: checked anywhere means kept. The returned PageResult reflects
// what was committed even when an error aborts the page midway.
func (c *Coordinator) SubmitPage(ctx context.Context, subject string, pageGroups []model.DuplicateGroup, sel Selections) (*PageResult, error) {
	final := FinalStates(pageGroups, sel)
	result := &PageResult{Final: final}

	size := batchSize(len(pageGroups))
	for offset := 0; offset < len(pageGroups); offset += size {
		end := offset + size
		if end > len(pageGroups) {
			end = len(pageGroups)
		}
		batch := pageGroups[offset:end]

		workers := c.concurrency
		if len(batch) < workers {
			workers = len(batch)
		}
		pool := worker.NewPool(workers)
		pool.Start()

		for _, g := range batch {
			var kept []model.RecordID
			for _, id := range g.Files {
				if final[id] {
					kept = append(kept, id)
				}
			}
			pool.Submit(&submitJob{backend: c.backend, subject: subject, groupID: g.ID, kept: kept})
		}

		var failed error
		for _, res := range pool.Wait() {
			outcome := res.(*submitOutcome)
			if outcome.err != nil {
				if failed == nil {
					failed = fmt.Errorf("submit group %d: %w", outcome.groupID, outcome.err)
				}
				continue
			}
			result.Submitted = append(result.Submitted, outcome.groupID)
			if outcome.deltas != nil {
				result.Deltas.Add(*outcome.deltas)
			}
		}

		// Abort remaining batches; committed groups stay committed
		if failed != nil {
			return result, failed
		}
	}

	return result, nil
}
