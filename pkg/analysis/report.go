package analysis

import "time"

// Report is one check run reduced to the views renderers print. Analyze
// builds it once; JSON output serializes it as is.
type Report struct {
	Diagnostics []DiagnosticEntry `json:"diagnostics,omitempty"`
	ByFile      []FileAnalysis    `json:"byFile,omitempty"`
	ByRule      []RuleAnalysis    `json:"byRule,omitempty"`

	// ByKind counts correction proposals by kind, quick fixes first.
	ByKind []KindAnalysis `json:"byProposalKind,omitempty"`

	// Errors lists files that could not be read or analyzed.
	Errors []FileError `json:"errors,omitempty"`

	Totals    Totals    `json:"summary"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// DiagnosticEntry is one finding with its position and proposals.
type DiagnosticEntry struct {
	FilePath    string          `json:"filePath"`
	RuleID      string          `json:"ruleId"`
	RuleName    string          `json:"ruleName"`
	Code        string          `json:"code,omitempty"`
	Severity    string          `json:"severity"`
	Message     string          `json:"message"`
	StartLine   int             `json:"startLine"`
	StartColumn int             `json:"startColumn"`
	EndLine     int             `json:"endLine"`
	EndColumn   int             `json:"endColumn"`
	Suggestion  string          `json:"suggestion,omitempty"`
	Fixable     bool            `json:"fixable"`
	Proposals   []ProposalEntry `json:"proposals,omitempty"`
}

// FileError records a file that could not be processed.
type FileError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ProposalEntry is one correction offered for a diagnostic. Only the
// preferred proposal carries its edits.
type ProposalEntry struct {
	Label     string      `json:"label"`
	Kind      string      `json:"kind"`
	Relevance int         `json:"relevance"`
	Preferred bool        `json:"preferred,omitempty"`
	Edits     []EditEntry `json:"edits,omitempty"`
}

// EditEntry replaces the original bytes [Offset, Offset+Length) with Text.
type EditEntry struct {
	Offset int    `json:"offset"`
	Length int    `json:"length"`
	Text   string `json:"text"`
}

// Totals aggregates the whole run. Fixable counts findings with at least
// one proposal; Fixed counts proposals applied by --fix.
type Totals struct {
	Files           int `json:"filesChecked"`
	FilesWithIssues int `json:"filesWithIssues"`
	Issues          int `json:"totalIssues"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Infos           int `json:"infos"`
	Fixable         int `json:"fixable"`
	FilesModified   int `json:"filesModified"`
	FilesErrored    int `json:"filesErrored"`
	Fixed           int `json:"fixed"`
}

// HasIssues reports whether any finding survived.
func (t Totals) HasIssues() bool { return t.Issues > 0 }

// HasErrors reports whether any finding is an error.
func (t Totals) HasErrors() bool { return t.Errors > 0 }

// Counts tallies findings of one group by severity.
type Counts struct {
	Issues   int `json:"issues"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

func (c *Counts) add(severity string) {
	c.Issues++
	switch severity {
	case severityError:
		c.Errors++
	case severityWarning:
		c.Warnings++
	case severityInfo:
		c.Infos++
	}
}

// FileAnalysis groups the findings of one file.
type FileAnalysis struct {
	Path string `json:"path"`
	Counts
	Rules []string `json:"rules,omitempty"`
}

// RuleAnalysis groups the findings of one rule. Code is the FLOW code
// behind the rule; Fixable counts the findings that carry a proposal.
type RuleAnalysis struct {
	RuleID   string `json:"ruleId"`
	RuleName string `json:"ruleName"`
	Code     string `json:"code,omitempty"`
	Counts
	Fixable int      `json:"fixable"`
	Files   []string `json:"files,omitempty"`
}

// KindAnalysis counts the proposals of one kind. Preferred counts those
// that --fix would apply.
type KindAnalysis struct {
	Kind      string `json:"kind"`
	Offered   int    `json:"offered"`
	Preferred int    `json:"preferred"`
}
