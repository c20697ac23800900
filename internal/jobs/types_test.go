package jobs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermanent(t *testing.T) {
	base := errors.New("bad uri")
	err := fmt.Errorf("handle: %w", Permanent(base))

	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "handle: bad uri", err.Error())

	assert.False(t, IsPermanent(base))
	assert.NoError(t, Permanent(nil))
}

func TestParseTextJob_Job(t *testing.T) {
	var j Job = &ParseTextJob{JobID: "42", Status: JobStatusRunning}
	assert.Equal(t, "42", j.GetID())
	assert.Equal(t, JobTypeParseText, j.GetType())
	assert.Equal(t, JobStatusRunning, j.GetStatus())
}
