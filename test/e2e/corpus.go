// Package e2e provides end-to-end tests with a realistic corpus and multiple questions.
package e2e

import (
	"fmt"
	"strings"
)

// QADocument is a document entry in the E2E corpus (source file name plus text).
type QADocument struct {
	Source string
	Text   string
}

// AskTestCase defines a question and the source file(s) that must appear in
// the returned evidence. At least one of ExpectedSources must be present.
type AskTestCase struct {
	Question        string
	ExpectedSources []string
	Description     string
}

// Corpus holds documents and ask test cases for E2E tests.
type Corpus struct {
	Documents    []QADocument
	TestCases    []AskTestCase
	TotalDocs    int
	TotalQueries int
}

// BuildCorpus returns a corpus of short documents with varied content and a
// question per document. Each document carries a unique signature phrase so
// questions can assert the correct source is cited.
func BuildCorpus() *Corpus {
	topics := []struct {
		source string
		phrase string
		text   string
	}{
		{"runbook.md", "failover procedure", "When the primary region goes down, follow the failover procedure: promote the standby, repoint DNS, and page the on-call lead."},
		{"onboarding.txt", "onboarding checklist", "New hires work through the onboarding checklist during their first week: accounts, laptop setup, and a tour of the deploy pipeline."},
		{"backups.md", "nightly backup schedule", "The nightly backup schedule runs at 02:00 UTC. Snapshots are retained for thirty days and verified weekly by restore drills."},
		{"vpn.txt", "VPN access request", "To get remote access, file a VPN access request in the help desk portal and wait for security approval, usually one business day."},
		{"expenses.md", "expense reimbursement policy", "The expense reimbursement policy covers travel, meals up to the per diem, and conference fees approved in advance by a manager."},
		{"oncall.txt", "on-call rotation handoff", "The on-call rotation handoff happens every Monday at 10:00. The outgoing engineer summarizes open incidents and silenced alerts."},
		{"database.md", "connection pool sizing", "Connection pool sizing defaults to twenty per service instance. Raise it only after checking the database's max_connections headroom."},
		{"deploy.txt", "canary deployment steps", "The canary deployment steps are: ship to five percent of traffic, watch error rates for an hour, then promote or roll back."},
		{"security.md", "password rotation requirement", "The password rotation requirement applies to service accounts only; human accounts use hardware keys and never expire."},
		{"holidays.txt", "company holiday calendar", "The company holiday calendar lists twelve fixed days plus two floating days that must be booked a week in advance."},
		{"kubernetes.md", "cluster upgrade window", "The cluster upgrade window is the second Tuesday of each month. Workloads with a PodDisruptionBudget are drained automatically."},
		{"billing.txt", "invoice dispute process", "The invoice dispute process starts with an email to billing within sixty days; include the invoice number and the disputed line items."},
		{"styleguide.md", "commit message format", "The commit message format is a short imperative subject under seventy characters, a blank line, then the motivation for the change."},
		{"metrics.txt", "latency alert threshold", "The latency alert threshold is a p99 above 800 milliseconds for five consecutive minutes, measured at the load balancer."},
		{"hiring.md", "interview feedback deadline", "The interview feedback deadline is twenty-four hours after the interview. Late feedback blocks the hiring committee review."},
		{"storage.txt", "object retention lifecycle", "The object retention lifecycle moves blobs to cold storage after ninety days and deletes them after seven years unless placed on legal hold."},
	}

	docs := make([]QADocument, 0, len(topics))
	cases := make([]AskTestCase, 0, len(topics))
	for _, t := range topics {
		docs = append(docs, QADocument{Source: t.source, Text: t.text})
		cases = append(cases, AskTestCase{
			Question:        "what is the " + t.phrase + "?",
			ExpectedSources: []string{t.source},
			Description:     fmt.Sprintf("question about %q should cite %s", t.phrase, t.source),
		})
	}
	return &Corpus{
		Documents:    docs,
		TestCases:    cases,
		TotalDocs:    len(docs),
		TotalQueries: len(cases),
	}
}

func containsPhrase(d QADocument, phrase string) bool {
	return strings.Contains(strings.ToLower(d.Text), strings.ToLower(phrase))
}
