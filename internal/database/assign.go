package database

import (
	"fmt"
	"strings"

	"cloud-ide/backend/internal/models"
)

// Assignments collects the SET clause of an UPDATE from the set fields of a
// patch, in the order they were added.
type Assignments struct {
	columns []string
	args    []any
}

func (a *Assignments) Add(column string, value any) {
	a.columns = append(a.columns, column)
	a.args = append(a.args, value)
}

// AddField adds column only when f is set. convert maps the value to its
// driver representation and may be nil.
func AddField[T any](a *Assignments, column string, f models.Field[T], convert func(T) any) {
	if !f.IsSet() {
		return
	}
	v, _ := f.Get()
	if convert != nil {
		a.Add(column, convert(v))
		return
	}
	a.Add(column, v)
}

func (a *Assignments) Empty() bool {
	return len(a.columns) == 0
}

func (a *Assignments) Args() []any {
	return a.args
}

// SQL renders "col = <ph>, ..." where placeholder(i) renders the i-th (1-based)
// bind parameter.
func (a *Assignments) SQL(placeholder func(i int) string) string {
	parts := make([]string, len(a.columns))
	for i, col := range a.columns {
		parts[i] = fmt.Sprintf("%s = %s", col, placeholder(i+1))
	}
	return strings.Join(parts, ", ")
}

// Dollar renders postgres style placeholders.
func Dollar(i int) string {
	return fmt.Sprintf("$%d", i)
}

// Question renders sqlite style placeholders.
func Question(int) string {
	return "?"
}
