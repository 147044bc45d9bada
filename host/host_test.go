package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageOrder(t *testing.T) {
	ordered := []Stage{
		StageAdditional,
		StagePreProcess,
		StageDerived,
		StageAdditions,
		StageOptimize,
		StageSummarize,
		StageReport,
	}
	for i := 1; i < len(ordered); i++ {
		assert.Less(t, ordered[i-1], ordered[i], "%s must run before %s", ordered[i-1], ordered[i])
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "additions", StageAdditions.String())
	assert.Equal(t, "report", StageReport.String())
	assert.Equal(t, "custom", Stage(42).String())
}
