package agentflow

import (
	"context"
	"errors"

	"github.com/dvirpinch/noa-chatbot-web/internal/domain"
)

var errStub = errors.New("stub transport failure")

// scriptedLLM replays a fixed script of completions and records every prompt.
// A nil entry in the script makes that call fail.
type scriptedLLM struct {
	script  []*string
	prompts []string
	opts    []domain.CompletionOptions
	calls   int
}

func scripted(replies ...string) *scriptedLLM {
	s := &scriptedLLM{}
	for _, r := range replies {
		rc := r
		s.script = append(s.script, &rc)
	}
	return s
}

func failing() *scriptedLLM {
	return &scriptedLLM{script: []*string{nil}}
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string, opts domain.CompletionOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.opts = append(s.opts, opts)

	reply := s.script[s.calls%len(s.script)]
	s.calls++
	if reply == nil {
		return "", errStub
	}
	return *reply, nil
}
