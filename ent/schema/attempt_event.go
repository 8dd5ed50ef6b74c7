package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// AttemptEvent records one graded answer within a practice session.
type AttemptEvent struct {
	ent.Schema
}

func (AttemptEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (AttemptEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("Links to SessionEvent"),
		field.String("question_id").
			NotEmpty().
			Comment("Server question UUID"),
		field.String("section").
			NotEmpty().
			Comment("UTBK section code"),
		field.String("selected_answer").
			NotEmpty().
			Comment("Chosen option letter, A through E"),
		field.Bool("correct").
			Comment("Whether the answer was correct"),
		field.Int("time_spent_secs").
			Comment("Reported seconds, clamped to [1,600]"),
		field.Float("theta_change").
			Optional().
			Nillable().
			Comment("Ability delta reported by the server, when present"),
	}
}

func (AttemptEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("section"),
		index.Fields("correct"),
	}
}
