// Package export assembles a session's artifacts into a downloadable
// document. Formatting stays plain on purpose; the document is a working
// summary, not a pitch deck.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/mvpforge/mvpforge/server/catalog"
	"github.com/mvpforge/mvpforge/store"
)

// Format selects the export output format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Service renders export documents.
type Service struct {
	md goldmark.Markdown
}

// NewService creates an export service.
func NewService() *Service {
	return &Service{
		md: goldmark.New(
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
	}
}

// Render produces the export document for a session.
func (s *Service) Render(session *store.Session, format Format) ([]byte, string, error) {
	doc := buildMarkdown(session)

	switch format {
	case FormatHTML:
		var buf bytes.Buffer
		if err := s.md.Convert([]byte(doc), &buf); err != nil {
			return nil, "", fmt.Errorf("failed to render HTML: %w", err)
		}
		return buf.Bytes(), "text/html; charset=utf-8", nil
	case FormatMarkdown, "":
		return []byte(doc), "text/markdown; charset=utf-8", nil
	default:
		return nil, "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func buildMarkdown(session *store.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# MVP Plan\n\n")
	fmt.Fprintf(&b, "Session %s, exported %s.\n\n", session.UID, time.Now().Format("2006-01-02"))

	data := session.Data

	if ps := data.ProblemStatement; ps != nil {
		b.WriteString("## Problem\n\n")
		fmt.Fprintf(&b, "%s\n\n", ps.Refined)
		fmt.Fprintf(&b, "- Audience: %s\n", ps.Audience)
		fmt.Fprintf(&b, "- Impact: %s\n", ps.Impact)
		writeList(&b, "Key pains", ps.KeyPains)
		fmt.Fprintf(&b, "\n> Original: %s\n\n", ps.Original)
	}

	if mr := data.MarketResearch; mr != nil {
		b.WriteString("## Market\n\n")
		fmt.Fprintf(&b, "%s\n\n", mr.Summary)
		fmt.Fprintf(&b, "- Size: %s\n", mr.MarketSize)
		writeList(&b, "Trends", mr.Trends)
		writeList(&b, "Segments", mr.Segments)
		writeList(&b, "Risks", mr.Risks)
		b.WriteString("\n")
	}

	if rc := data.RootCause; rc != nil {
		b.WriteString("## Root Cause\n\n")
		fmt.Fprintf(&b, "Primary cause: %s\n\n", rc.PrimaryCause)
		for _, cause := range rc.Causes {
			writeCause(&b, cause, 0)
		}
		b.WriteString("\n")
	}

	if ca := data.CompetitorAnalysis; ca != nil {
		b.WriteString("## Competition\n\n")
		for _, competitor := range ca.Competitors {
			fmt.Fprintf(&b, "- **%s** (overlap %.0f%%): strengths %s; weaknesses %s\n",
				competitor.Name, competitor.Overlap*100,
				strings.Join(competitor.Strengths, ", "),
				strings.Join(competitor.Weaknesses, ", "))
		}
		writeList(&b, "Gaps", ca.Gaps)
		fmt.Fprintf(&b, "\nPositioning: %s\n\n", ca.Positioning)
	}

	if icp := data.ICP; icp != nil {
		b.WriteString("## Ideal Customer\n\n")
		fmt.Fprintf(&b, "%s: %s at a %s company.\n", icp.Persona, icp.Role, icp.CompanySize)
		writeList(&b, "Pains", icp.Pains)
		writeList(&b, "Gains", icp.Gains)
		writeList(&b, "Channels", icp.Channels)
		b.WriteString("\n")
	}

	if uc := data.UseCase; uc != nil {
		b.WriteString("## Core Use Case\n\n")
		fmt.Fprintf(&b, "**%s** (%s)\n\n%s\n\n", uc.Title, uc.Actor, uc.Scenario)
		for i, step := range uc.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		fmt.Fprintf(&b, "\nOutcome: %s\n\n", uc.Outcome)
	}

	if req := data.Requirements; req != nil {
		b.WriteString("## Requirements\n\n")
		for _, r := range req.Functional {
			fmt.Fprintf(&b, "- %s: **%s**. %s\n", r.ID, r.Title, r.Description)
		}
		for _, r := range req.NonFunctional {
			fmt.Fprintf(&b, "- %s: **%s**. %s\n", r.ID, r.Title, r.Description)
		}
		b.WriteString("\n")
	}

	if p := data.Prioritization; p != nil {
		b.WriteString("## Prioritization\n\n")
		fmt.Fprintf(&b, "Method: %s\n\n", p.Method)
		for _, item := range p.Items {
			fmt.Fprintf(&b, "- %s [%s, %.1f]: %s\n", item.RequirementID, item.Tier, item.Score, item.Rationale)
		}
		writeList(&b, "MVP cut", p.MVP)
		b.WriteString("\n")
	}

	b.WriteString("---\n\nProgress: ")
	done := make([]string, 0, len(session.CompletedStages))
	for _, stage := range session.CompletedStages {
		if def, ok := catalog.Lookup(stage); ok {
			done = append(done, def.Title)
		}
	}
	if len(done) == 0 {
		b.WriteString("no stages completed yet.\n")
	} else {
		fmt.Fprintf(&b, "%s.\n", strings.Join(done, ", "))
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", title, strings.Join(items, "; "))
}

func writeCause(b *strings.Builder, cause store.CauseNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s- %s", indent, cause.Label)
	if cause.Evidence != "" {
		fmt.Fprintf(b, " (%s)", cause.Evidence)
	}
	b.WriteString("\n")
	for _, sub := range cause.SubCauses {
		writeCause(b, sub, depth+1)
	}
}
