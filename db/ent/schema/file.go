package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"
)

// File is a blob in the store: an uploaded source PDF or a generated output.
type File struct {
	ent.Schema
}

func (File) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "files"},
	}
}

func (File) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable().
			StorageKey("id"),
		field.String("original_name").NotEmpty(),
		field.String("bucket").NotEmpty(),
		field.String("storage_path").NotEmpty(),
		field.String("content_type").Default(""),
		field.Int64("size_bytes").Optional().Nillable().NonNegative(),
		field.Time("created_at").Default(time.Now).Immutable(),
	}
}

func (File) Edges() []ent.Edge {
	return []ent.Edge{
		// ONE file -> MANY jobs translating it
		edge.To("jobs", TranslationJob.Type),
		// ONE file -> jobs that produced it
		edge.To("outputs", TranslationJob.Type),
	}
}

func (File) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("bucket", "storage_path").Unique(),
	}
}
