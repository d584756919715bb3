package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gotasks/domain/mapping"
)

func TestDefaultSynonymTable(t *testing.T) {
	table := DefaultSynonymTable()

	assert.Equal(t, mapping.TargetFields, table.Fields())
	assert.Len(t, table.Vocabulary(), 95)

	field, ok := table.FieldFor("  DEADLINE ")
	require.True(t, ok)
	assert.Equal(t, mapping.FieldDueDate, field)

	field, ok = table.FieldFor("duedate")
	require.True(t, ok, "field names are self-synonyms")
	assert.Equal(t, mapping.FieldDueDate, field)

	_, ok = table.FieldFor("assignee")
	assert.False(t, ok)

	syns := table.SynonymsFor(mapping.FieldTags)
	assert.Equal(t, []string{"labels", "keywords", "tag", "tags"}, syns)
}

func TestSynonymTableRejectsCollisions(t *testing.T) {
	_, err := NewSynonymTable([]SynonymEntry{
		{mapping.FieldTitle, []string{"name"}},
		{mapping.FieldDescription, []string{"Name"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"title"`)
	assert.Contains(t, err.Error(), `"description"`)
}

func TestSynonymTableRejectsUnknownField(t *testing.T) {
	_, err := NewSynonymTable([]SynonymEntry{{mapping.TargetField("assignee"), []string{"owner"}}})
	assert.Error(t, err)
}

func TestSynonymTableReturnsCopies(t *testing.T) {
	table := DefaultSynonymTable()
	vocab := table.Vocabulary()
	vocab[0] = "mutated"
	assert.NotEqual(t, "mutated", table.Vocabulary()[0])
}
