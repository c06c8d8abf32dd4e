package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
	"github.com/johnquangdev/meeting-processor/pkg/dateparse"
)

var (
	errEmptyOutput = errors.New("extractor returned empty output")
	errNoJSON      = errors.New("no JSON object found")
	errNoTaskList  = errors.New(`missing "tasks" array`)

	trailingComma = regexp.MustCompile(`,\s*([\]}])`)

	unassigned = map[string]struct{}{
		"": {}, "unassigned": {}, "none": {}, "null": {}, "n/a": {}, "na": {},
		"tbd": {}, "unknown": {}, "nobody": {}, "-": {},
	}

	taskValidator = validator.New()
)

// maxTitleRunes bounds a stored task title; longer titles are truncated
const maxTitleRunes = 1000

// extractedTask is the wire shape of one task; unknown fields are ignored
type extractedTask struct {
	Title    string  `json:"title" validate:"required"`
	Assignee *string `json:"assignee"`
	DueDate  *string `json:"due_date"`
}

// ExtractionResult is the validated outcome of parsing extractor output
type ExtractionResult struct {
	Tasks    []entities.Task
	Warnings []string
}

// ParseTasks validates raw extractor output against the task schema
// {"tasks": [{"title", "assignee"?, "due_date"?}]}. Individual tasks that
// fail validation are dropped with a warning; output that cannot be read as
// a task list at all yields a *ParseError. Relative due dates resolve
// against ref.
func ParseTasks(raw string, ref time.Time) (*ExtractionResult, error) {
	items, err := decodeTaskList(raw)
	if err != nil {
		return nil, &ParseError{Raw: raw, Err: err}
	}

	res := &ExtractionResult{Tasks: make([]entities.Task, 0, len(items))}
	for i, item := range items {
		var et extractedTask
		if err := json.Unmarshal(item, &et); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("task %d dropped: %v", i, err))
			continue
		}
		et.Title = strings.TrimSpace(et.Title)
		if err := taskValidator.Struct(et); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("task %d dropped: %v", i, err))
			continue
		}
		if r := []rune(et.Title); len(r) > maxTitleRunes {
			et.Title = strings.TrimSpace(string(r[:maxTitleRunes]))
			res.Warnings = append(res.Warnings, fmt.Sprintf("task %d: title truncated to %d characters", i, maxTitleRunes))
		}

		var due *entities.Date
		if et.DueDate != nil {
			if t, ok := dateparse.ParseDueDate(*et.DueDate, ref); ok {
				due = &entities.Date{Time: t}
			} else if strings.TrimSpace(*et.DueDate) != "" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("task %d: unrecognised due date %q", i, *et.DueDate))
			}
		}

		task, err := entities.NewTask(et.Title, normalizeAssignee(et.Assignee), due)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("task %d dropped: %v", i, err))
			continue
		}
		res.Tasks = append(res.Tasks, task)
	}
	return res, nil
}

func decodeTaskList(raw string) ([]json.RawMessage, error) {
	content := stripCodeFence(raw)
	if content == "" {
		return nil, errEmptyOutput
	}

	var lastErr error
	for _, candidate := range jsonCandidates(content) {
		items, err := taskListFrom([]byte(candidate))
		if err == nil {
			return items, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errNoJSON
	}
	return nil, lastErr
}

// jsonCandidates yields progressively more aggressive repairs of content.
// The object slice is preferred; a bare array is only tried after it.
func jsonCandidates(content string) []string {
	out := []string{content}
	for _, sliced := range []string{sliceJSON(content, '{', '}'), sliceJSON(content, '[', ']')} {
		if sliced == "" || sliced == content {
			continue
		}
		out = append(out, sliced)
		if fixed := trailingComma.ReplaceAllString(sliced, "$1"); fixed != sliced {
			out = append(out, fixed)
		}
	}
	if fixed := trailingComma.ReplaceAllString(content, "$1"); fixed != content {
		out = append(out, fixed)
	}
	return out
}

func taskListFrom(b []byte) ([]json.RawMessage, error) {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(b, &payload); err != nil {
		return nil, err
	}
	tasks, ok := payload["tasks"]
	if !ok || bytes.Equal(bytes.TrimSpace(tasks), []byte("null")) {
		return nil, errNoTaskList
	}
	var items []json.RawMessage
	if err := json.Unmarshal(tasks, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errNoTaskList, err)
	}
	return items, nil
}

// stripCodeFence extracts JSON content from markdown code blocks or plain text
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)

	start := strings.Index(content, "```")
	if start == -1 {
		return content
	}
	body := content[start+3:]
	// drop a language tag such as ```json
	if nl := strings.IndexByte(body, '\n'); nl != -1 && !strings.ContainsAny(body[:nl], "{[") {
		body = body[nl+1:]
	} else {
		body = strings.TrimPrefix(body, "json")
	}
	if end := strings.Index(body, "```"); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// sliceJSON returns the span from the first open to the last close, or ""
// when there is none.
func sliceJSON(content string, open, close byte) string {
	start := strings.IndexByte(content, open)
	if start == -1 {
		return ""
	}
	end := strings.LastIndexByte(content, close)
	if end <= start {
		return ""
	}
	return content[start : end+1]
}

func normalizeAssignee(a *string) *string {
	if a == nil {
		return nil
	}
	name := strings.TrimSpace(*a)
	if _, ok := unassigned[strings.ToLower(name)]; ok {
		return nil
	}
	return &name
}

// excerpt shortens raw model output for audit metadata
func excerpt(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "…"
}
