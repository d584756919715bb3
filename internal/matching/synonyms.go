package matching

import (
	"fmt"

	"gotasks/domain/mapping"
)

// SynonymEntry registers alternative header spellings for one field
type SynonymEntry struct {
	Field    mapping.TargetField
	Synonyms []string
}

// DefaultSynonyms is the built-in synonym list, in TargetFields order
var DefaultSynonyms = []SynonymEntry{
	{mapping.FieldTitle, []string{"task", "name", "item", "todo", "subject", "heading", "summary", "work"}},
	{mapping.FieldDescription, []string{"details", "notes", "info", "about", "comment", "desc", "body", "content"}},
	{mapping.FieldDueDate, []string{"date", "deadline", "due", "when", "finish by", "complete by", "target", "eta"}},
	{mapping.FieldPriority, []string{"importance", "level", "urgency", "criticality", "rank", "pri"}},
	{mapping.FieldStatus, []string{"state", "progress", "stage", "phase", "condition"}},
	{mapping.FieldCompleted, []string{"done", "finished", "complete", "check", "checked"}},
	{mapping.FieldStartTime, []string{"start", "begins", "from", "start time", "start date"}},
	{mapping.FieldEndTime, []string{"end", "finish", "to", "end time", "end date", "until"}},
	{mapping.FieldLocation, []string{"place", "where", "venue", "room", "address"}},
	{mapping.FieldAllDay, []string{"full day", "whole day", "entire day"}},
	{mapping.FieldCategory, []string{"type", "group", "project", "area", "folder"}},
	{mapping.FieldTags, []string{"labels", "keywords", "tag"}},
	{mapping.FieldDuration, []string{"time", "hours", "minutes", "elapsed", "spent"}},
	{mapping.FieldEstimatedTime, []string{"estimate", "estimated", "expected time", "planned"}},
	{mapping.FieldRecurrenceType, []string{"recurring", "repeat", "frequency", "recurs"}},
}

// SynonymTable maps header tokens to target fields. It is immutable after
// construction and safe for concurrent use.
type SynonymTable struct {
	fields     []mapping.TargetField
	byField    map[mapping.TargetField][]string
	byToken    map[string]mapping.TargetField
	vocabulary []string
}

// NewSynonymTable builds a table from entries. Each field's own name is added
// as a self-synonym. A token registered for two different fields is an error.
func NewSynonymTable(entries []SynonymEntry) (*SynonymTable, error) {
	t := &SynonymTable{
		byField: make(map[mapping.TargetField][]string, len(entries)),
		byToken: make(map[string]mapping.TargetField),
	}

	for _, entry := range entries {
		if !entry.Field.IsKnown() {
			return nil, fmt.Errorf("synonym table: unknown field %q", entry.Field)
		}
		if _, dup := t.byField[entry.Field]; dup {
			return nil, fmt.Errorf("synonym table: field %q registered twice", entry.Field)
		}
		t.fields = append(t.fields, entry.Field)

		tokens := make([]string, 0, len(entry.Synonyms)+1)
		tokens = append(tokens, entry.Synonyms...)
		tokens = append(tokens, string(entry.Field))

		registered := make([]string, 0, len(tokens))
		for _, raw := range tokens {
			token := fold(raw)
			if token == "" {
				return nil, fmt.Errorf("synonym table: empty synonym for field %q", entry.Field)
			}
			if owner, exists := t.byToken[token]; exists {
				if owner == entry.Field {
					continue
				}
				return nil, fmt.Errorf("synonym table: %q registered for both %q and %q", token, owner, entry.Field)
			}
			t.byToken[token] = entry.Field
			t.vocabulary = append(t.vocabulary, token)
			registered = append(registered, token)
		}
		t.byField[entry.Field] = registered
	}

	return t, nil
}

// DefaultSynonymTable builds the table from DefaultSynonyms. It panics only
// if the built-in list itself is inconsistent.
func DefaultSynonymTable() *SynonymTable {
	t, err := NewSynonymTable(DefaultSynonyms)
	if err != nil {
		panic(err)
	}
	return t
}

// FieldFor returns the field owning token, compared case-insensitively
func (t *SynonymTable) FieldFor(token string) (mapping.TargetField, bool) {
	f, ok := t.byToken[fold(token)]
	return f, ok
}

// SynonymsFor returns the registered tokens of field, self-synonym last
func (t *SynonymTable) SynonymsFor(field mapping.TargetField) []string {
	tokens := t.byField[field]
	out := make([]string, len(tokens))
	copy(out, tokens)
	return out
}

// Vocabulary returns every registered token in registration order
func (t *SynonymTable) Vocabulary() []string {
	out := make([]string, len(t.vocabulary))
	copy(out, t.vocabulary)
	return out
}

// Fields returns the fields in registration order
func (t *SynonymTable) Fields() []mapping.TargetField {
	out := make([]mapping.TargetField, len(t.fields))
	copy(out, t.fields)
	return out
}
