package pipeline

import (
	"context"
	"errors"
	"testing"
)

func TestGateEmptyResultsFalse(t *testing.T) {
	gate := NewGate(&fakeIndex{}, 0.5, 0.3)

	if gate.ShouldUseRetrieval(context.Background(), "library hours") {
		t.Error("expected false when index yields nothing")
	}
}

func TestGateSearchFailureFalse(t *testing.T) {
	gate := NewGate(&fakeIndex{err: errors.New("index unreachable")}, 0.5, 0.3)

	if gate.ShouldUseRetrieval(context.Background(), "library hours") {
		t.Error("expected false on search failure")
	}
}

func TestGateAboveThresholdTrue(t *testing.T) {
	index := &fakeIndex{results: map[string][]Passage{
		"library hours": {passage("library is open 8am to 10pm", 0.8)},
	}}
	gate := NewGate(index, 0.5, 0.3)

	if !gate.ShouldUseRetrieval(context.Background(), "library hours") {
		t.Error("expected true when a score meets the threshold")
	}
}

func TestGateBelowThresholdButNonEmptyTrue(t *testing.T) {
	// The gate is retrieval-biased: candidates below threshold still pass.
	index := &fakeIndex{results: map[string][]Passage{
		"library hours": {passage("loosely related text", 0.1)},
	}}
	gate := NewGate(index, 0.5, 0.3)

	if !gate.ShouldUseRetrieval(context.Background(), "library hours") {
		t.Error("expected true when results exist below threshold")
	}
}

func TestGateNameSearchAnyResultTrue(t *testing.T) {
	index := &fakeIndex{results: map[string][]Passage{
		"John Mwangi": {passage("staff directory entry", 0.05)},
	}}
	gate := NewGate(index, 0.5, 0.3)

	if !gate.ShouldUseRetrieval(context.Background(), "John Mwangi") {
		t.Error("expected true for name search with any results")
	}
}
