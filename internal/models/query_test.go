package models

import (
	"errors"
	"testing"
)

func TestIngestRequestValidate(t *testing.T) {
	req := &IngestRequest{}
	if err := req.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("empty root: expected ErrValidation, got %v", err)
	}
	req.RootFileID = "f1"
	if err := req.Validate(); err != nil {
		t.Errorf("valid request: %v", err)
	}
}

func TestQueryRequestValidate(t *testing.T) {
	req := &QueryRequest{}
	if err := req.Validate(); !errors.Is(err, ErrValidation) {
		t.Errorf("empty question: expected ErrValidation, got %v", err)
	}
	req.Question = "what?"
	if err := req.Validate(); err != nil {
		t.Errorf("valid request: %v", err)
	}
}
