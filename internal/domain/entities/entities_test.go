package entities

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2025-03-14")
	require.NoError(t, err)

	task := Task{Title: "Ship it", DueDate: &d}
	b, err := json.Marshal(task)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Ship it","assignee":null,"due_date":"2025-03-14"}`, string(b))

	var decoded Task
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.NotNil(t, decoded.DueDate)
	assert.Equal(t, "2025-03-14", decoded.DueDate.String())
	assert.Nil(t, decoded.Assignee)
}

func TestParseDate_Invalid(t *testing.T) {
	_, err := ParseDate("Friday")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestNewDate_DropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	d := NewDate(time.Date(2025, 1, 2, 23, 30, 0, 0, loc))
	assert.Equal(t, "2025-01-02", d.String())
	assert.Equal(t, 0, d.Hour())
}

func TestNewTask(t *testing.T) {
	_, err := NewTask("   ", nil, nil)
	assert.ErrorIs(t, err, ErrTaskTitleRequired)

	task, err := NewTask("  Finish report ", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Finish report", task.Title)
}

func TestNormalizeParticipants(t *testing.T) {
	got := NormalizeParticipants([]string{" John", "jane", "", "JOHN", "Jane "})
	assert.Equal(t, []string{"John", "jane"}, got)
}

func TestCandidate_Validate(t *testing.T) {
	assert.ErrorIs(t, Candidate{Transcript: "x"}.Validate(), ErrInvalidConferenceID)
	assert.ErrorIs(t, Candidate{ConferenceID: "c-1", Transcript: " "}.Validate(), ErrEmptyTranscript)
	assert.NoError(t, Candidate{ConferenceID: "c-1", Transcript: "hello"}.Validate())
}

func TestCandidate_RecordRoundTrip(t *testing.T) {
	end := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	c := Candidate{ConferenceID: "c-1", Title: "Sync", Transcript: "hi", Participants: []string{"a", "b"}, EndTime: &end}

	m := c.Record()
	assert.False(t, m.Processed)
	assert.Empty(t, m.Tasks)
	assert.NotNil(t, m.IssueKeys)
	assert.Equal(t, c, CandidateFromRecord(m))
}

func TestStage_Valid(t *testing.T) {
	assert.True(t, StageCreateIssues.Valid())
	assert.False(t, Stage("PUBLISH").Valid())
}
