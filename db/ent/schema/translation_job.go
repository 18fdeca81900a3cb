package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/legal-translator/constants"
	"github.com/joseph-ayodele/legal-translator/db/ent/schema/utils"
)

type TranslationJob struct{ ent.Schema }

func (TranslationJob) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "translation_jobs"},
	}
}

func (TranslationJob) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).Default(uuid.New).Immutable(),
		field.UUID("file_id", uuid.UUID{}),
		field.UUID("output_file_id", uuid.UUID{}).Optional().Nillable(),
		field.String("status").
			Default(string(constants.JobStatusPending)).
			Validate(utils.EnumValidator(constants.JobStatuses()...)),
		field.Int("progress").Default(0).Range(0, 100),
		field.String("src_lang").Default(constants.DefaultSourceLang).Validate(utils.LanguageValidator),
		field.String("tgt_lang").Default(constants.DefaultTargetLang).Validate(utils.LanguageValidator),
		field.String("error_message").Optional().Nillable().
			SchemaType(map[string]string{dialect.Postgres: "text"}),
		field.Time("created_at").Default(time.Now).Immutable(),
		field.Time("updated_at").Default(time.Now).UpdateDefault(time.Now),
	}
}

func (TranslationJob) Edges() []ent.Edge {
	return []ent.Edge{
		// MANY jobs -> ONE source file
		edge.From("file", File.Type).
			Ref("jobs").
			Field("file_id").
			Unique().
			Required(),
		edge.From("output_file", File.Type).
			Ref("outputs").
			Field("output_file_id").
			Unique(),
	}
}

func (TranslationJob) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("file_id"),
		index.Fields("status", "updated_at"),
	}
}
