package sqlguard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckArgument_CleanValues(t *testing.T) {
	assert.Nil(t, CheckArgument("verb_id", "12345"))
	assert.Nil(t, CheckArgument("word", "be"))
	assert.Nil(t, CheckArgument("name", "O'Brien"))
}

func TestCheckArgument_InjectionPatterns(t *testing.T) {
	det := CheckArgument("verb_id", "1' OR '1'='1")
	require.NotNil(t, det)
	assert.Equal(t, "verb_id", det.Argument)
	assert.NotEmpty(t, det.Fingerprint)

	det = CheckArgument("verb_id", "1; DROP TABLE verbs--")
	require.NotNil(t, det)
}

func TestCheckArgument_NonStringValuesSkipped(t *testing.T) {
	assert.Nil(t, CheckArgument("limit", 100))
	assert.Nil(t, CheckArgument("active", true))
	assert.Nil(t, CheckArgument("key", nil))
}

func TestCheckArguments(t *testing.T) {
	detections := CheckArguments(map[string]any{
		"verb_id": "1 UNION SELECT password FROM users",
		"word":    "be",
		"limit":   50,
	})
	require.Len(t, detections, 1)
	assert.Equal(t, "verb_id", detections[0].Argument)
}
