package output

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
)

const (
	ruleID   = "akscan/access-key"
	ruleName = "PossibleAccessKey"
)

// SARIFWriter outputs the finding in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *Report) error {
	sarif := buildSARIF(report)
	data, err := json.MarshalIndent(sarif, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling SARIF: %w", err)
	}
	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("writing SARIF: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool              sarifTool              `json:"tool"`
	AutomationDetails sarifAutomationDetails `json:"automationDetails"`
	Results           []sarifResult          `json:"results"`
}

type sarifAutomationDetails struct {
	GUID string `json:"guid"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	ShortDescription sarifMessage        `json:"shortDescription"`
	DefaultConfig    sarifDefaultConfig  `json:"defaultConfiguration"`
	Properties       sarifRuleProperties `json:"properties,omitempty"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifRuleProperties struct {
	Tags []string `json:"tags,omitempty"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          map[string]string `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

func buildSARIF(report *Report) sarifLog {
	results := []sarifResult{}
	if f := report.Finding; f != nil {
		results = append(results, sarifResult{
			RuleID:  ruleID,
			Level:   "error",
			Message: sarifMessage{Text: f.Message()},
			Locations: []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{URI: f.Path},
				},
			}},
			PartialFingerprints: map[string]string{
				"akscanFinding/v1": fingerprint(f.Path, f.Commit),
			},
			Properties: map[string]string{
				"commit": f.Commit,
				"ref":    f.Ref,
			},
		})
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           Tool,
						Version:        report.Version,
						InformationURI: "https://github.com/dshills/akscan",
						Rules: []sarifRule{{
							ID:               ruleID,
							Name:             ruleName,
							ShortDescription: sarifMessage{Text: "File content may contain an access-key ID or secret"},
							DefaultConfig:    sarifDefaultConfig{Level: "error"},
							Properties:       sarifRuleProperties{Tags: []string{"security", "secret"}},
						}},
					},
				},
				AutomationDetails: sarifAutomationDetails{GUID: report.RunID},
				Results:           results,
			},
		},
	}
}

// fingerprint is stable for a path at a commit and never includes the token.
func fingerprint(path, commit string) string {
	h := sha256.Sum256([]byte(path + "\x00" + commit))
	return fmt.Sprintf("%x", h[:8])
}
