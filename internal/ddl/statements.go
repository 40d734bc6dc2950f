package ddl

import (
	"fmt"
	"strings"
)

// DDL renders the layout as an ordered statement list: all tables first,
// then primary keys, then foreign keys, so the output can be executed
// top to bottom.
func (l *Layout) DDL() []string {
	var stmts []string
	for _, t := range l.Tables {
		stmts = append(stmts, t.createStatement())
	}
	for _, t := range l.Tables {
		if len(t.PrimaryKey) > 0 {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD PRIMARY KEY (%s);",
				t.Name, strings.Join(t.PrimaryKey, ", ")))
		}
	}
	for _, t := range l.Tables {
		for _, fk := range t.ForeignKeys {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD FOREIGN KEY (%s) REFERENCES %s (%s);",
				t.Name, fk.Column, fk.RefTable, fk.RefColumn))
		}
	}
	return stmts
}

func (t *Table) createStatement() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.Name)
	for i, col := range t.Columns {
		fmt.Fprintf(&b, "    %s %s", col.Name, col.SQLType)
		if i < len(t.Columns)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(");")
	return b.String()
}
