package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/yaklabco/flowfix/pkg/config"
	"github.com/yaklabco/flowfix/pkg/lint"
	"github.com/yaklabco/flowfix/pkg/runner"
)

const (
	sarifVersion   = "2.1.0"
	sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"
	sarifToolURI   = "https://github.com/yaklabco/flowfix"
)

// The SARIF 2.1.0 subset flowfix emits: one run, one rule per rule ID seen,
// one result per finding and at most one fix, the preferred proposal, as
// byte-offset replacements.
type (
	SARIFOutput struct {
		Schema  string     `json:"$schema"`
		Version string     `json:"version"`
		Runs    []SARIFRun `json:"runs"`
	}
	SARIFRun struct {
		Tool    SARIFTool     `json:"tool"`
		Results []SARIFResult `json:"results"`
	}
	SARIFTool struct {
		Driver SARIFDriver `json:"driver"`
	}
	SARIFDriver struct {
		Name           string      `json:"name"`
		Version        string      `json:"version"`
		InformationURI string      `json:"informationUri"`
		Rules          []SARIFRule `json:"rules"`
	}
	SARIFRule struct {
		ID               string               `json:"id"`
		Name             string               `json:"name,omitempty"`
		ShortDescription SARIFMultiformatText `json:"shortDescription,omitempty"`
		DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
		Properties       map[string]any       `json:"properties,omitempty"`
	}
	SARIFMultiformatText struct {
		Text string `json:"text"`
	}
	SARIFRuleConfig struct {
		Level string `json:"level"`
	}
	SARIFResult struct {
		RuleID    string          `json:"ruleId"`
		RuleIndex int             `json:"ruleIndex"`
		Level     string          `json:"level"`
		Message   SARIFMessage    `json:"message"`
		Locations []SARIFLocation `json:"locations"`
		Fixes     []SARIFFix      `json:"fixes,omitempty"`
	}
	SARIFMessage struct {
		Text string `json:"text"`
	}
	SARIFLocation struct {
		PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
	}
	SARIFPhysicalLocation struct {
		ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
		Region           SARIFRegion           `json:"region"`
	}
	SARIFArtifactLocation struct {
		URI string `json:"uri"`
	}
	// SARIFRegion is either a line/column span or a byte range.
	SARIFRegion struct {
		StartLine   int  `json:"startLine,omitempty"`
		StartColumn int  `json:"startColumn,omitempty"`
		EndLine     int  `json:"endLine,omitempty"`
		EndColumn   int  `json:"endColumn,omitempty"`
		ByteOffset  *int `json:"byteOffset,omitempty"`
		ByteLength  *int `json:"byteLength,omitempty"`
	}
	SARIFFix struct {
		Description     SARIFMessage          `json:"description"`
		ArtifactChanges []SARIFArtifactChange `json:"artifactChanges"`
	}
	SARIFArtifactChange struct {
		ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
		Replacements     []SARIFReplacement    `json:"replacements"`
	}
	SARIFReplacement struct {
		DeletedRegion   SARIFRegion           `json:"deletedRegion"`
		InsertedContent *SARIFInsertedContent `json:"insertedContent,omitempty"`
	}
	SARIFInsertedContent struct {
		Text string `json:"text"`
	}
)

// SARIFReporter writes findings as a SARIF log for code scanning.
type SARIFReporter struct {
	output
}

// NewSARIFReporter creates a SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{output: newOutput(opts)}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer r.flush(&err)

	doc := r.document(result)
	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(doc); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}
	return len(doc.Runs[0].Results), nil
}

func (r *SARIFReporter) document(result *runner.Result) *SARIFOutput {
	version := r.opts.ToolVersion
	if version == "" {
		version = "dev"
	}
	run := SARIFRun{
		Tool: SARIFTool{Driver: SARIFDriver{
			Name:           "flowfix",
			Version:        version,
			InformationURI: sarifToolURI,
			Rules:          []SARIFRule{},
		}},
		Results: []SARIFResult{},
	}

	if result != nil {
		index := make(map[string]int)
		for _, file := range result.Files {
			if file.Result == nil || file.Result.FileResult == nil {
				continue
			}
			uri := filepath.ToSlash(r.path(file.Path))
			for i := range file.Result.Diagnostics {
				diag := &file.Result.Diagnostics[i]
				idx, seen := index[diag.RuleID]
				if !seen {
					idx = len(run.Tool.Driver.Rules)
					index[diag.RuleID] = idx
					run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule(diag))
				}
				run.Results = append(run.Results, sarifResult(uri, idx, diag))
			}
		}
	}
	return &SARIFOutput{Schema: sarifSchemaURI, Version: sarifVersion, Runs: []SARIFRun{run}}
}

// sarifRule describes a rule by its registered description and FLOW code.
func sarifRule(diag *lint.Diagnostic) SARIFRule {
	rule := SARIFRule{
		ID:               diag.RuleID,
		Name:             diag.RuleName,
		ShortDescription: SARIFMultiformatText{Text: diag.Message},
		DefaultConfig:    &SARIFRuleConfig{Level: sarifLevel(diag.Severity)},
	}
	if registered, ok := lint.DefaultRegistry.GetByID(diag.RuleID); ok {
		rule.ShortDescription.Text = registered.Description()
	}
	if diag.Code != "" {
		rule.Properties = map[string]any{"code": string(diag.Code)}
	}
	return rule
}

func sarifResult(uri string, ruleIndex int, diag *lint.Diagnostic) SARIFResult {
	res := SARIFResult{
		RuleID:    diag.RuleID,
		RuleIndex: ruleIndex,
		Level:     sarifLevel(diag.Severity),
		Message:   SARIFMessage{Text: diag.Message},
		Locations: []SARIFLocation{{PhysicalLocation: SARIFPhysicalLocation{
			ArtifactLocation: SARIFArtifactLocation{URI: uri},
			Region: SARIFRegion{
				StartLine:   diag.StartLine,
				StartColumn: diag.StartColumn,
				EndLine:     diag.EndLine,
				EndColumn:   diag.EndColumn,
			},
		}}},
	}
	if fix := sarifFix(uri, diag); fix != nil {
		res.Fixes = []SARIFFix{*fix}
	}
	return res
}

// sarifFix converts the preferred proposal into byte-offset replacements.
func sarifFix(uri string, diag *lint.Diagnostic) *SARIFFix {
	preferred := diag.Preferred()
	if preferred == nil {
		return nil
	}
	edits, err := preferred.Edits()
	if err != nil || edits.IsEmpty() {
		return nil
	}

	change := SARIFArtifactChange{ArtifactLocation: SARIFArtifactLocation{URI: uri}}
	for _, e := range edits.Edits() {
		offset, length := e.Offset, e.Length
		change.Replacements = append(change.Replacements, SARIFReplacement{
			DeletedRegion:   SARIFRegion{ByteOffset: &offset, ByteLength: &length},
			InsertedContent: &SARIFInsertedContent{Text: e.Text},
		})
	}

	return &SARIFFix{
		Description:     SARIFMessage{Text: preferred.Label},
		ArtifactChanges: []SARIFArtifactChange{change},
	}
}

func sarifLevel(severity config.Severity) string {
	switch severity {
	case config.SeverityError:
		return "error"
	case config.SeverityInfo:
		return "note"
	}
	return "warning"
}
