// Package solution attaches remediation narratives to detected issues,
// with depth tiered strictly by priority. Deep analysis is reserved for
// issues worth acting on; MEDIUM and LOW findings only ever get a
// one-sentence recommendation.
package solution

import (
	"fmt"

	"github.com/jmoretti/threadtriage/internal/detect"
)

// Solutions is the structured remediation record attached to a card.
// LongTermFix and CodeSuggestions are present only for CRITICAL issues;
// for HIGH they are absent from the JSON, not null.
type Solutions struct {
	RootCause       string   `json:"root_cause"`
	ImmediateFix    string   `json:"immediate_fix"`
	LongTermFix     string   `json:"long_term_fix,omitempty"`
	CodeSuggestions []string `json:"code_suggestions,omitempty"`
}

// genericRootCause is used when no confident root cause is derivable.
// The issue is still emitted; it is never dropped.
const genericRootCause = "Root cause could not be determined from the thread trace alone; start the investigation from the quoted evidence."

// remedy is one row of the per-signature remediation table.
type remedy struct {
	rootCause    string
	immediateFix string
	longTermFix  string
	suggestions  []string
}

var remedies = map[string]remedy{
	"internal-field-leak": {
		rootCause:    "Evaluator or internal metric fields are serialized into the user-visible payload instead of being stripped at the response boundary.",
		immediateFix: "Filter internal field names out of the response serializer before any reply leaves the service.",
		longTermFix:  "Maintain an explicit allowlist schema for outbound payloads so new internal fields are excluded by default.",
		suggestions:  []string{"Add a response-shaping layer that marshals only the public response schema.", "Assert in an integration test that no outbound payload contains evaluator-prefixed keys."},
	},
	"sql-leak": {
		rootCause:    "Raw query text from the data layer is interpolated into assistant output.",
		immediateFix: "Replace query echoes with a neutral description of the operation performed.",
		longTermFix:  "Route all data-layer errors and traces through a sanitizer before they can reach response assembly.",
		suggestions:  []string{"Wrap the database client so its errors carry an operation label instead of SQL text."},
	},
	"internal-endpoint-leak": {
		rootCause:    "Internal service URLs are passed through to user-visible text.",
		immediateFix: "Redact private addresses and internal hostnames from assistant output.",
		longTermFix:  "Keep service topology out of prompt context; reference services by public alias only.",
		suggestions:  []string{"Add a redaction pass over outbound text matching private address ranges."},
	},
	"system-prompt-leak": {
		rootCause:    "System-level instructions are being echoed into assistant responses.",
		immediateFix: "Add an output filter that rejects responses quoting system instructions.",
		longTermFix:  "Separate instruction context from quotable context in prompt assembly.",
		suggestions:  []string{"Gate responses through a classifier that flags instruction-like content."},
	},
	"credential-leak": {
		rootCause:    "Secrets present in tool output or context are reproduced in the response.",
		immediateFix: "Rotate the exposed credential and add its pattern to the output redaction list.",
		longTermFix:  "Scrub secrets from tool results before they enter model context at all.",
		suggestions:  []string{"Run tool output through a secret scanner before context assembly."},
	},
	"pii-leak": {
		rootCause:    "Personally identifying data from retrieved records is surfaced verbatim.",
		immediateFix: "Mask identifiers in assistant output unless the user supplied them in this thread.",
		longTermFix:  "Apply field-level PII tagging in the retrieval layer and enforce masking downstream.",
		suggestions:  []string{"Add a masking pass for email addresses and government identifiers."},
	},
	"incomplete-response": {
		rootCause:    "The final response covers only part of the user's explicit sub-questions.",
		immediateFix: "Decompose multi-part questions and verify each part is answered before finishing.",
	},
	"contradiction": {
		rootCause:    "Assistant turns assert conflicting facts, likely from stale context after a correction.",
		immediateFix: "Reconcile the conflicting statements and restate the correct fact to the user.",
	},
	"leaky-error": {
		rootCause:    "A raw implementation error is surfaced instead of a user-facing message.",
		immediateFix: "Catch errors at the response boundary and translate them into plain language.",
	},
	"slow-execution": {
		rootCause:    "A single slow step dominates thread latency.",
		immediateFix: "Profile the slowest step and add caching or narrow its workload.",
	},
	"token-usage-high": {
		rootCause:    "Context assembly includes more material than the task needs.",
		immediateFix: "Trim retrieved context and cap prompt size for this thread class.",
	},
	"step-error": {
		rootCause:    "A step failed mid-thread and the failure propagated into the final outcome.",
		immediateFix: "Review the failing step's error and add handling or a retry for it.",
	},
}

// Synthesize builds the tiered solutions record for an issue.
// CRITICAL gets the full record; HIGH gets root cause and immediate fix
// only; MEDIUM and LOW yield nil (see Recommend).
func Synthesize(iss detect.Issue) *Solutions {
	if iss.Priority < detect.High {
		return nil
	}

	r, ok := lookup(iss.Signature)
	sol := &Solutions{
		RootCause:    r.rootCause,
		ImmediateFix: r.immediateFix,
	}
	if !ok {
		sol.RootCause = genericRootCause
	}

	if iss.Priority == detect.Critical {
		sol.LongTermFix = r.longTermFix
		sol.CodeSuggestions = r.suggestions
		if sol.LongTermFix == "" {
			sol.LongTermFix = "Add a regression check so this class of finding is caught before release."
		}
		if len(sol.CodeSuggestions) == 0 {
			sol.CodeSuggestions = []string{fmt.Sprintf("Add a test reproducing the evidence: %s", iss.Evidence)}
		}
	}

	return sol
}

// Recommend returns the single-sentence recommendation used for every
// tier; for MEDIUM/LOW it is the only remediation output produced.
func Recommend(iss detect.Issue) string {
	if r, ok := lookup(iss.Signature); ok && r.immediateFix != "" {
		return r.immediateFix
	}
	return fmt.Sprintf("Review the %s finding against the quoted evidence.", iss.Category)
}

func lookup(signature string) (remedy, bool) {
	if r, ok := remedies[signature]; ok {
		return r, true
	}
	// Status signatures are parameterized (thread-status-error,
	// thread-status-failure); they share one remedy.
	if len(signature) > 14 && signature[:14] == "thread-status-" {
		return remedy{
			rootCause:    "The thread terminated abnormally before producing a complete result.",
			immediateFix: "Inspect the failing step's error output and reproduce the thread input locally.",
		}, true
	}
	return remedy{immediateFix: "Start from the quoted evidence and the affected step."}, false
}
