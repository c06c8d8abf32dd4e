package pipeline

import (
	"fmt"

	"github.com/johnquangdev/meeting-processor/internal/domain/entities"
)

// state is a node of the processing state machine, in execution order
type state int

const (
	stateStart state = iota
	stateSummarize
	stateExtract
	stateCreateIssues
	stateStore
	stateEnd
)

var stateStages = map[state]entities.Stage{
	stateSummarize:    entities.StageSummarize,
	stateExtract:      entities.StageExtract,
	stateCreateIssues: entities.StageCreateIssues,
	stateStore:        entities.StageStore,
}

func (s state) stage() entities.Stage {
	return stateStages[s]
}

func (s state) String() string {
	switch s {
	case stateStart:
		return "START"
	case stateEnd:
		return "END"
	}
	return string(s.stage())
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeFailed
)

type transition struct {
	from state
	on   outcome
	to   state
}

// transitions is the complete edge list. A failed SUMMARIZE jumps straight
// to STORE; every other stage proceeds regardless of outcome.
var transitions = []transition{
	{stateStart, outcomeOK, stateSummarize},
	{stateSummarize, outcomeOK, stateExtract},
	{stateSummarize, outcomeFailed, stateStore},
	{stateExtract, outcomeOK, stateCreateIssues},
	{stateExtract, outcomeFailed, stateCreateIssues},
	{stateCreateIssues, outcomeOK, stateStore},
	{stateCreateIssues, outcomeFailed, stateStore},
	{stateStore, outcomeOK, stateEnd},
	{stateStore, outcomeFailed, stateEnd},
}

func nextState(from state, on outcome) (state, error) {
	for _, t := range transitions {
		if t.from == from && t.on == on {
			return t.to, nil
		}
	}
	return stateEnd, fmt.Errorf("no transition from %s", from)
}

// bypassed lists the stage states a transition from -> to jumps over
func bypassed(from, to state) []state {
	var out []state
	for s := from + 1; s < to && s < stateEnd; s++ {
		out = append(out, s)
	}
	return out
}
