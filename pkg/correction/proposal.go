// Package correction builds quick-fix proposals for flow findings. A
// proposal records its label and rank up front; its edit set is computed
// through the rewrite engine only when the proposal is selected.
package correction

import (
	"sort"
	"sync"

	"github.com/yaklabco/flowfix/pkg/comments"
	"github.com/yaklabco/flowfix/pkg/fix"
	"github.com/yaklabco/flowfix/pkg/flowcheck"
	"github.com/yaklabco/flowfix/pkg/jast"
	"github.com/yaklabco/flowfix/pkg/rewrite"
)

// Kind classifies a proposal for the display layer.
type Kind string

// Proposal kinds.
const (
	KindQuickFix Kind = "quickfix"
	KindRefactor Kind = "refactor"
)

// Relevance ranks. Higher ranks are listed first.
const (
	RelevanceHigh   = 10
	RelevanceMedium = 6
	RelevanceLow    = 3
)

// Proposal is one way to correct a finding.
type Proposal struct {
	// Label is the text shown to the user.
	Label string

	// Relevance orders proposals for the same finding.
	Relevance int

	// Kind classifies the change.
	Kind Kind

	// Code is the finding code the proposal addresses.
	Code flowcheck.Code

	produce func() (*fix.MultiEdit, error)
	once    sync.Once
	edits   *fix.MultiEdit
	err     error
}

// Edits computes the proposal's edit set on first use and caches it.
func (p *Proposal) Edits() (*fix.MultiEdit, error) {
	p.once.Do(func() {
		p.edits, p.err = p.produce()
	})
	return p.edits, p.err
}

// Preferred returns the highest ranked proposal, or nil.
func Preferred(proposals []*Proposal) *Proposal {
	if len(proposals) == 0 {
		return nil
	}
	return proposals[0]
}

// Builder creates proposals for the findings of one snapshot.
type Builder struct {
	snap *jast.FileSnapshot
	opts rewrite.Options
}

// NewBuilder returns a builder for snap. The comment index is shared by
// every proposal it produces.
func NewBuilder(snap *jast.FileSnapshot, opts rewrite.Options) *Builder {
	if opts.Comments == nil {
		opts.Comments = comments.FromSnapshot(snap)
	}
	return &Builder{snap: snap, opts: opts}
}

// Proposals returns the proposals for f, highest relevance first. Findings
// without a correction yield nil.
func (b *Builder) Proposals(f flowcheck.Finding) []*Proposal {
	var out []*Proposal
	add := func(p *Proposal) {
		if p != nil {
			out = append(out, p)
		}
	}

	switch f.Code {
	case flowcheck.CodeUnreachable, flowcheck.CodeDeadCode:
		add(b.removeUnreachable(f))
	case flowcheck.CodeUninitialized:
		add(b.initialize(f))
	case flowcheck.CodeMissingReturn:
		add(b.addReturn(f))
	case flowcheck.CodeFinalReassigned:
		add(b.removeFinal(f))
	case flowcheck.CodeUnusedVariable:
		add(b.removeUnused(f))
	case flowcheck.CodeUnhandledException:
		add(b.addThrows(f))
		add(b.addCatch(f))
		add(b.surroundWithTry(f))
	case flowcheck.CodeMisplacedJump:
		add(b.removeJump(f))
	case flowcheck.CodeTypeMismatch:
		add(b.changeType(f))
	case flowcheck.CodeNullDereference, flowcheck.CodePotentialNull, flowcheck.CodeSyntax:
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Relevance > out[j].Relevance
	})
	return out
}

func (b *Builder) propose(f flowcheck.Finding, label string, relevance int, kind Kind,
	build func(rw *rewrite.Rewrite) error,
) *Proposal {
	return &Proposal{
		Label:     label,
		Relevance: relevance,
		Kind:      kind,
		Code:      f.Code,
		produce: func() (*fix.MultiEdit, error) {
			rw := rewrite.New()
			if err := build(rw); err != nil {
				return nil, err
			}
			return rw.ComputeEdits(b.snap, b.opts)
		},
	}
}
