package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gotasks/domain/mapping"
	"gotasks/domain/sheet"
	"gotasks/domain/task"
)

// column is one mapped source column in header order
type column struct {
	name  string
	index int
	field mapping.TargetField
}

// schemaFields are the targets a task record stores
var schemaFields = map[mapping.TargetField]bool{
	mapping.FieldTitle:         true,
	mapping.FieldDescription:   true,
	mapping.FieldDueDate:       true,
	mapping.FieldPriority:      true,
	mapping.FieldStatus:        true,
	mapping.FieldCompleted:     true,
	mapping.FieldCategory:      true,
	mapping.FieldTags:          true,
	mapping.FieldEstimatedTime: true,
}

var (
	trueLiterals  = map[string]bool{"true": true, "yes": true, "y": true, "x": true, "✓": true, "1": true, "done": true, "completed": true}
	falseLiterals = map[string]bool{"false": true, "no": true, "n": true, "✗": true, "0": true}
)

// plan resolves the confirmation against the headers. Columns are visited in
// header order; duplicate headers read the last column with that name.
func (p *Pipeline) plan(headers []string, confirmation mapping.Confirmation) []column {
	index := sheet.HeaderIndex(headers)
	columns := make([]column, 0, len(confirmation))

	for _, name := range sheet.UniqueHeaders(headers) {
		field, ok := confirmation.Lookup(name)
		if !ok || field.IsNone() {
			continue
		}
		if !schemaFields[field] {
			p.logger.Debug("[Import] column %q maps to %q which tasks do not store; dropping", name, field)
			continue
		}
		columns = append(columns, column{name: name, index: index[name], field: field})
	}

	for name := range confirmation {
		if _, ok := index[name]; !ok {
			p.logger.Debug("[Import] mapping for unknown column %q ignored", name)
		}
	}

	return columns
}

// normalize assembles a draft from one row. Soft field failures fall back
// silently; the returned reasons are hard failures that reject the row.
func (p *Pipeline) normalize(row sheet.Row, columns []column) (*task.Draft, []string) {
	draft := &task.Draft{
		Priority: task.PriorityMedium,
		Status:   task.StatusTodo,
	}
	var (
		reasons     []string
		description []string
		seenTags    = make(map[string]bool)
	)

	for _, col := range columns {
		cell := row.At(col.index)
		if cell.IsEmpty() {
			continue
		}
		raw := cell.String()
		value := strings.TrimSpace(raw)

		switch col.field {
		case mapping.FieldTitle:
			draft.Title = value
		case mapping.FieldDescription:
			description = append(description, fmt.Sprintf("%s: %s", col.name, raw))
		case mapping.FieldTags:
			if !seenTags[value] {
				seenTags[value] = true
				draft.Tags = append(draft.Tags, value)
			}
		case mapping.FieldDueDate:
			if due, ok := p.dates.Parse(cell); ok {
				draft.DueDate = &due
			} else {
				p.logger.Debug("[Import] could not parse date %q in column %q", value, col.name)
			}
		case mapping.FieldPriority:
			if priority, ok := task.ParsePriority(value); ok {
				draft.Priority = priority
			} else {
				draft.Priority = task.PriorityMedium
			}
		case mapping.FieldStatus:
			if status, ok := task.ParseStatus(value); ok {
				draft.Status = status
			} else {
				draft.Status = task.StatusTodo
			}
		case mapping.FieldCompleted:
			if completed, ok := parseCompleted(cell); ok {
				draft.Completed = completed
			}
		case mapping.FieldCategory:
			draft.Category = value
		case mapping.FieldEstimatedTime:
			minutes, ok := parseWholeNumber(cell)
			if !ok {
				reasons = append(reasons, fmt.Sprintf("estimatedTime: %q is not a whole number", value))
				continue
			}
			draft.EstimatedTime = &minutes
		}
	}

	if len(description) > 0 {
		draft.Description = strings.Join(description, "\n")
	}

	return draft, reasons
}

func parseCompleted(cell sheet.Value) (bool, bool) {
	if b, ok := cell.Bool(); ok {
		return b, true
	}
	if n, ok := cell.Number(); ok {
		return n != 0, true
	}
	s := strings.ToLower(strings.TrimSpace(cell.String()))
	switch {
	case trueLiterals[s]:
		return true, true
	case falseLiterals[s]:
		return false, true
	default:
		return false, false
	}
}

func parseWholeNumber(cell sheet.Value) (int, bool) {
	n, ok := cell.Number()
	if !ok {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(cell.String()), 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}
