package fsmodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Validate(t *testing.T) {
	cases := []struct {
		name string
		run  *Run
		ok   bool
	}{
		{"valid full", &Run{Cwd: "/tmp", Concurrency: 1, Full: true}, true},
		{"valid partial", &Run{Cwd: "/tmp", Concurrency: 1, Partial: true}, true},
		{"blank cwd", &Run{Cwd: "  ", Concurrency: 1, Full: true}, false},
		{"zero concurrency", &Run{Cwd: "/tmp", Concurrency: 0, Full: true}, false},
		{"neither full nor partial", &Run{Cwd: "/tmp", Concurrency: 1}, false},
		{"both full and partial", &Run{Cwd: "/tmp", Concurrency: 1, Full: true, Partial: true}, false},
		{"nil", nil, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.run.Validate()
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRun_ValidateIgnoresLog(t *testing.T) {
	r := &Run{Cwd: "/tmp", Concurrency: 1, Full: true, Log: stubLogger{}}
	assert.NoError(t, r.Validate())
}

type stubLogger struct{}

func (stubLogger) Log(message any, data map[string]any)      {}
func (stubLogger) Info(message string, data map[string]any)  {}
func (stubLogger) Warn(message string, data map[string]any)  {}
func (stubLogger) Error(message string, data map[string]any) {}
func (stubLogger) Debug(message string, data map[string]any) {}
