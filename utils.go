package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") &&
		(strings.Contains(trimmed, "<html") || strings.Contains(trimmed, "<body") ||
			strings.Contains(trimmed, "<div") || strings.Contains(trimmed, "<pre"))
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
)

// extractTextFromHTML drops tags and decodes the common entities. Flowchart
// arrows survive since browsers copy them as &gt;.
func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return htmlEntities.Replace(result.String())
}

// cleanClipboardText normalizes pasted text: HTML is flattened, control
// characters other than newlines and tabs are dropped and line endings
// become \n.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	if isHTML(text) {
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// flowchartSource pulls the body out of a fenced ```mermaid block when the
// text carries one, so charts copied out of markdown import as-is.
func flowchartSource(text string) string {
	start := strings.Index(text, "```mermaid")
	if start < 0 {
		return text
	}
	body := text[start+len("```mermaid"):]
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return body
}
