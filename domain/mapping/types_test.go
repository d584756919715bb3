package mapping

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetFieldsClosedSet(t *testing.T) {
	assert.Len(t, TargetFields, 15)
	assert.Equal(t, FieldTitle, TargetFields[0])
	assert.True(t, FieldRecurrenceType.IsKnown())
	assert.False(t, TargetField("assignee").IsKnown())
	assert.False(t, FieldNone.IsKnown())
}

func TestColumnMatchJSON(t *testing.T) {
	unmatched := ColumnMatch{SourceColumn: "Zzz", SuggestedBy: ByFuzzy}
	data, err := json.Marshal(unmatched)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sourceColumn":"Zzz","targetField":null,"confidence":0,"suggestedBy":"fuzzy"}`, string(data))

	matched := ColumnMatch{SourceColumn: "Due", TargetField: Field(FieldDueDate), Confidence: 90, SuggestedBy: BySynonym}
	data, err = json.Marshal(matched)
	require.NoError(t, err)
	assert.JSONEq(t, `{"sourceColumn":"Due","targetField":"dueDate","confidence":90,"suggestedBy":"synonym"}`, string(data))
	assert.True(t, matched.Matched())
	assert.False(t, unmatched.Matched())
}

func TestConfirmationLookup(t *testing.T) {
	var nilConf Confirmation
	_, ok := nilConf.Lookup("Task")
	assert.False(t, ok)

	conf := Confirmation{"Notes": FieldNone}
	f, ok := conf.Lookup("Notes")
	assert.True(t, ok)
	assert.True(t, f.IsNone())
}
