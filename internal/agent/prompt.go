package agent

import (
	"fmt"
	"strings"

	"github.com/mrz1836/cadence/internal/domain"
)

// implementVerdictInstruction tells the agent how to end an implementation
// session so the verdict can be machine-parsed.
const implementVerdictInstruction = `When you are finished, print exactly one final line of JSON and nothing after it:
{"success": true|false, "summary": "<one-line description of the changes>", "details": "<optional detail>"}`

// verifyVerdictInstruction tells the agent how to end a verification
// session so the verdict can be machine-parsed.
const verifyVerdictInstruction = `When you are finished, print exactly one final line of JSON and nothing after it:
{"passed": true|false, "details": "<which steps failed and why, if any>"}`

// implementPrompt builds the prompt for implementing one feature.
// It includes the feature's steps, accumulated progress history, and recent
// commits so each fresh agent session starts with project context.
func implementPrompt(f *domain.Feature, pctx *domain.ProjectContext) string {
	var sb strings.Builder

	sb.WriteString("You are implementing one feature in an existing project.\n\n")
	fmt.Fprintf(&sb, "Feature: %s\n", f.ID)
	if f.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", f.Category)
	}
	fmt.Fprintf(&sb, "Priority: %s\n", f.Priority)
	fmt.Fprintf(&sb, "Description: %s\n", f.Description)

	if len(f.Steps) > 0 {
		sb.WriteString("\nVerification steps that must pass:\n")
		for i, step := range f.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	}

	if pctx != nil {
		if pctx.RecentProgress != "" {
			sb.WriteString("\nRecent progress log:\n")
			sb.WriteString(pctx.RecentProgress)
			sb.WriteString("\n")
		}
		if len(pctx.RecentCommits) > 0 {
			sb.WriteString("\nRecent commits:\n")
			for _, c := range pctx.RecentCommits {
				sb.WriteString(c)
				sb.WriteString("\n")
			}
		}
	}

	sb.WriteString("\nImplement the feature completely. Do not modify feature_list.json or claude-progress.txt; the orchestrator maintains them.\n\n")
	sb.WriteString(implementVerdictInstruction)

	return sb.String()
}

// verifyPrompt builds the prompt for verifying one feature against its
// declared steps.
func verifyPrompt(f *domain.Feature) string {
	var sb strings.Builder

	sb.WriteString("You are verifying that a feature works in an existing project. Do not change any code.\n\n")
	fmt.Fprintf(&sb, "Feature: %s\n", f.ID)
	fmt.Fprintf(&sb, "Description: %s\n", f.Description)

	if len(f.Steps) > 0 {
		sb.WriteString("\nRun each verification step and check its expected outcome:\n")
		for i, step := range f.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	} else {
		sb.WriteString("\nThe feature declares no explicit steps; verify the described behavior directly.\n")
	}

	sb.WriteString("\n")
	sb.WriteString(verifyVerdictInstruction)

	return sb.String()
}
