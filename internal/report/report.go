// Package report renders job outcomes and service stats for humans and scripts.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/target/promptwait/internal/comfy"
	apperrors "github.com/target/promptwait/internal/errors"
	"github.com/target/promptwait/internal/service"
	"github.com/target/promptwait/internal/util"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Write renders out in the requested format.
func Write(w io.Writer, out *service.Outcome, format Format) error {
	if out == nil {
		return nil
	}
	if format == FormatJSON {
		return writeJSON(w, out)
	}
	return writeText(w, out)
}

func writeText(w io.Writer, out *service.Outcome) error {
	if err := writeStatsLine(w, out.Stats); err != nil {
		return err
	}
	elapsed := util.FormatElapsed(out.Elapsed)
	switch out.State {
	case service.StateCompleted:
		if _, err := fmt.Fprintf(w, "Job %s completed after %d poll(s) in %s\n", out.PromptID, out.Polls, elapsed); err != nil {
			return err
		}
		return writeArtifacts(w, out.Artifacts)
	case service.StateFailed:
		_, err := fmt.Fprintf(w, "Job %s failed after %d poll(s): %s\n", out.PromptID, out.Polls, failureText(out))
		return err
	case service.StateTimedOut:
		_, err := fmt.Fprintf(w, "Job %s timed out after %d poll(s) in %s\n", out.PromptID, out.Polls, elapsed)
		return err
	default:
		_, err := fmt.Fprintf(w, "Job %s ended in state %q\n", out.PromptID, out.State)
		return err
	}
}

func writeArtifacts(w io.Writer, artifacts []service.ArtifactReport) error {
	if len(artifacts) == 0 {
		_, err := fmt.Fprintln(w, "No artifacts produced")
		return err
	}
	if _, err := fmt.Fprintf(w, "Artifacts (%d):\n", len(artifacts)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, a := range artifacts {
		if _, err := fmt.Fprintf(tw, "  %s\t%s\n", a.Filename, a.Path); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func failureText(out *service.Outcome) string {
	if desc, ok := out.Record.ErrorDescription(); ok {
		return desc
	}
	if out.Err == nil {
		return "unknown error"
	}
	var appErr *apperrors.AppError
	if errors.As(out.Err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return out.Err.Error()
}

type jsonOutcome struct {
	*service.Outcome
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

func writeJSON(w io.Writer, out *service.Outcome) error {
	doc := jsonOutcome{Outcome: out, ElapsedMS: out.Elapsed.Milliseconds()}
	if out.Err != nil {
		doc.Error = out.Err.Error()
		doc.ErrorKind = apperrors.Describe(out.Err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteStats renders the extracted system stats, one per line.
func WriteStats(w io.Writer, baseURL string, stats *comfy.SystemStats) error {
	if _, err := fmt.Fprintf(w, "Service %s is reachable\n", baseURL); err != nil {
		return err
	}
	if stats == nil || len(stats.Values) == 0 {
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range stats.Values {
		if _, err := fmt.Fprintf(tw, "  %s:\t%s\n", v.Name, v.Value); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// writeStatsLine prints the probed service metadata on one line ahead of the outcome.
func writeStatsLine(w io.Writer, stats *comfy.SystemStats) error {
	if stats == nil || len(stats.Values) == 0 {
		return nil
	}
	parts := make([]string, 0, len(stats.Values))
	for _, v := range stats.Values {
		parts = append(parts, v.Name+"="+v.Value)
	}
	_, err := fmt.Fprintf(w, "Service: %s\n", strings.Join(parts, " "))
	return err
}

// WriteTemplates lists the built-in workflow templates.
func WriteTemplates(w io.Writer, templates []comfy.Template) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "NAME\tPREFIX\tDESCRIPTION"); err != nil {
		return err
	}
	for _, t := range templates {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.DefaultPrefix, t.Description); err != nil {
			return err
		}
	}
	return tw.Flush()
}
