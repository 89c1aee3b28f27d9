package search

import (
	"github.com/poiesic/cvrank/core"
)

// SearchMonitor provides hooks to observe a search run.
// Implement this interface to inspect intermediate results stage by stage.
type SearchMonitor interface {
	Start(jobOffer string)
	AfterSplit(split core.JobRequirementSplit)
	AfterConstraintParse(constraint core.Constraint)
	AfterRetrieval(semantic, metadata core.RetrievalResult)
	AfterMerge(table core.OccurrenceTable)
	AfterNormalize(table core.OccurrenceTable)
	Finish(results []core.ScoredCandidate)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                           {}
func (n *noopMonitor) AfterSplit(_ core.JobRequirementSplit)    {}
func (n *noopMonitor) AfterConstraintParse(_ core.Constraint)   {}
func (n *noopMonitor) AfterRetrieval(_, _ core.RetrievalResult) {}
func (n *noopMonitor) AfterMerge(_ core.OccurrenceTable)        {}
func (n *noopMonitor) AfterNormalize(_ core.OccurrenceTable)    {}
func (n *noopMonitor) Finish(_ []core.ScoredCandidate)          {}
