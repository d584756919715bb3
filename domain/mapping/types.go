package mapping

// TargetField names a task attribute a spreadsheet column can map to.
// The empty TargetField means "no field / ignore this column".
type TargetField string

const (
	FieldNone           TargetField = ""
	FieldTitle          TargetField = "title"
	FieldDescription    TargetField = "description"
	FieldDueDate        TargetField = "dueDate"
	FieldPriority       TargetField = "priority"
	FieldStatus         TargetField = "status"
	FieldCompleted      TargetField = "completed"
	FieldStartTime      TargetField = "startTime"
	FieldEndTime        TargetField = "endTime"
	FieldLocation       TargetField = "location"
	FieldAllDay         TargetField = "allDay"
	FieldCategory       TargetField = "category"
	FieldTags           TargetField = "tags"
	FieldDuration       TargetField = "duration"
	FieldEstimatedTime  TargetField = "estimatedTime"
	FieldRecurrenceType TargetField = "recurrenceType"
)

// TargetFields is the closed, ordered set of mappable fields
var TargetFields = []TargetField{
	FieldTitle,
	FieldDescription,
	FieldDueDate,
	FieldPriority,
	FieldStatus,
	FieldCompleted,
	FieldStartTime,
	FieldEndTime,
	FieldLocation,
	FieldAllDay,
	FieldCategory,
	FieldTags,
	FieldDuration,
	FieldEstimatedTime,
	FieldRecurrenceType,
}

var knownFields = func() map[TargetField]bool {
	m := make(map[TargetField]bool, len(TargetFields))
	for _, f := range TargetFields {
		m[f] = true
	}
	return m
}()

// IsKnown reports whether f is one of TargetFields
func (f TargetField) IsKnown() bool {
	return knownFields[f]
}

// IsNone reports whether f means "ignore"
func (f TargetField) IsNone() bool {
	return f == FieldNone
}

func (f TargetField) String() string {
	return string(f)
}

// Provenance records which tier of the matching cascade produced a match
type Provenance string

const (
	ByExact   Provenance = "exact"
	BySynonym Provenance = "synonym"
	ByFuzzy   Provenance = "fuzzy"
	ByPattern Provenance = "pattern"
	ByUser    Provenance = "user"
)

// Alternative is a runner-up field with its heuristic confidence
type Alternative struct {
	Field      TargetField `json:"field"`
	Confidence int         `json:"confidence"`
}

// ColumnMatch is the matcher's suggestion for one source column.
// Confidence is a heuristic ranking score in 0..100, not a probability.
type ColumnMatch struct {
	SourceColumn string        `json:"sourceColumn"`
	TargetField  *TargetField  `json:"targetField"`
	Confidence   int           `json:"confidence"`
	SuggestedBy  Provenance    `json:"suggestedBy"`
	Alternatives []Alternative `json:"alternatives,omitempty"`
}

// Target returns the matched field, or FieldNone when unmatched
func (m ColumnMatch) Target() TargetField {
	if m.TargetField == nil {
		return FieldNone
	}
	return *m.TargetField
}

// Matched reports whether the column resolved to a field
func (m ColumnMatch) Matched() bool {
	return m.TargetField != nil && !m.TargetField.IsNone()
}

// Field returns a pointer suitable for ColumnMatch.TargetField
func Field(f TargetField) *TargetField {
	return &f
}

// Confirmation is the user-confirmed column-to-field assignment.
// A present key overrides the cascade; FieldNone means ignore.
type Confirmation map[string]TargetField

// Lookup returns the confirmed target for column and whether one exists
func (c Confirmation) Lookup(column string) (TargetField, bool) {
	if c == nil {
		return FieldNone, false
	}
	f, ok := c[column]
	return f, ok
}

// Suggestions aggregates a matching run for the confirmation UI
type Suggestions struct {
	NeedsReview    []string `json:"needsReview"`
	Unmatched      []string `json:"unmatched"`
	HighConfidence int      `json:"highConfidence"`
	TotalColumns   int      `json:"totalColumns"`
}

// DataType is the advisory classification of a column's sample values
type DataType string

const (
	DataText    DataType = "text"
	DataNumber  DataType = "number"
	DataDate    DataType = "date"
	DataBoolean DataType = "boolean"
	DataMixed   DataType = "mixed"
)

// NumericSummary describes numeric columns
type NumericSummary struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
}

// ColumnDataProfile is the advisory data profile of one column
type ColumnDataProfile struct {
	DataType       DataType        `json:"dataType"`
	SampleValues   []string        `json:"sampleValues"`
	NullCount      int             `json:"nullCount"`
	NumericSummary *NumericSummary `json:"numericSummary,omitempty"`
}
