package repository

import (
	"context"
	"fmt"
	"reflect"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/dialect/sql/schema"
	entann "entgo.io/ent/schema"

	entschema "github.com/joseph-ayodele/legal-translator/db/ent/schema"
)

const (
	tableFiles = "files"
	tableJobs  = "translation_jobs"
)

type entSchema interface {
	Fields() []ent.Field
	Indexes() []ent.Index
	Annotations() []entann.Annotation
}

// Tables derives the migration tables from the ent schema declarations.
func Tables() ([]*schema.Table, error) {
	files, err := tableOf(entschema.File{})
	if err != nil {
		return nil, err
	}
	jobs, err := tableOf(entschema.TranslationJob{})
	if err != nil {
		return nil, err
	}

	fileID := files.Columns[0]
	jobs.ForeignKeys = []*schema.ForeignKey{
		{
			Symbol:     "translation_jobs_files_jobs",
			Columns:    []*schema.Column{column(jobs, "file_id")},
			RefColumns: []*schema.Column{fileID},
			RefTable:   files,
			OnDelete:   schema.NoAction,
		},
		{
			Symbol:     "translation_jobs_files_outputs",
			Columns:    []*schema.Column{column(jobs, "output_file_id")},
			RefColumns: []*schema.Column{fileID},
			RefTable:   files,
			OnDelete:   schema.SetNull,
		},
	}
	return []*schema.Table{files, jobs}, nil
}

func tableOf(s entSchema) (*schema.Table, error) {
	name := tableName(s)
	if name == "" {
		return nil, fmt.Errorf("%T: missing table annotation", s)
	}
	t := &schema.Table{Name: name}
	for _, f := range s.Fields() {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, d.Name, d.Err)
		}
		col := &schema.Column{
			Name:       d.Name,
			Type:       d.Info.Type,
			Nullable:   d.Optional,
			SchemaType: d.SchemaType,
		}
		if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
			col.Default = d.Default
		}
		t.Columns = append(t.Columns, col)
	}
	if len(t.Columns) == 0 || t.Columns[0].Name != "id" {
		return nil, fmt.Errorf("%s: first field must be id", name)
	}
	t.PrimaryKey = []*schema.Column{t.Columns[0]}

	for _, idx := range s.Indexes() {
		d := idx.Descriptor()
		ix := &schema.Index{Unique: d.Unique, Name: indexName(name, d.Fields)}
		for _, fname := range d.Fields {
			c := column(t, fname)
			if c == nil {
				return nil, fmt.Errorf("%s: index on unknown column %q", name, fname)
			}
			ix.Columns = append(ix.Columns, c)
		}
		t.Indexes = append(t.Indexes, ix)
	}
	return t, nil
}

func column(t *schema.Table, name string) *schema.Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func indexName(table string, fields []string) string {
	n := table
	for _, f := range fields {
		n += "_" + f
	}
	return n
}

func tableName(s entSchema) string {
	for _, a := range s.Annotations() {
		switch v := a.(type) {
		case entsql.Annotation:
			return v.Table
		case *entsql.Annotation:
			return v.Table
		}
	}
	return ""
}

// Migrate creates or updates the tables on the connected database.
func Migrate(ctx context.Context, db *DB) error {
	tables, err := Tables()
	if err != nil {
		return err
	}
	m, err := schema.NewMigrate(db.Driver)
	if err != nil {
		return fmt.Errorf("init migration: %w", err)
	}
	if err := m.Create(ctx, tables...); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
