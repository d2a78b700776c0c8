package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *StatusResponseCLI:
		return formatStatusHuman(v)
	case *JournalResponseCLI:
		return formatJournalHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatStatusHuman(resp *StatusResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("DVC Status\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	stale := 0
	for _, t := range resp.Targets {
		if t.Stale {
			stale++
		}
	}
	b.WriteString(fmt.Sprintf("%d of %d targets need reproduction\n\n", stale, len(resp.Targets)))

	for _, t := range resp.Targets {
		var marker string
		switch {
		case t.Error != "":
			marker = "!"
		case t.Stale:
			marker = "*"
		default:
			marker = " "
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", marker, t.Path))
		if t.Error != "" {
			b.WriteString(fmt.Sprintf("      %s\n", t.Error))
		}
	}

	return b.String(), nil
}

func formatJournalHuman(resp *JournalResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Reproduction History\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Runs) == 0 {
		b.WriteString("No recorded runs.\n")
		return b.String(), nil
	}

	for i, run := range resp.Runs {
		b.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, run.StartedAt, run.Status))
		b.WriteString(fmt.Sprintf("   Targets: %s\n", strings.Join(run.Targets, " ")))
		if run.Project != "" {
			b.WriteString(fmt.Sprintf("   Project: %s\n", run.Project))
		}
		b.WriteString(fmt.Sprintf("   Changed: %d\n", run.Changed))
		if run.ErrorCode != "" {
			b.WriteString(fmt.Sprintf("   Error: %s\n", run.ErrorCode))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
