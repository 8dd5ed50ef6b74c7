package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records practice-session lifecycle events (start/end).
// The server owns the canonical record; these rows exist so history and
// streak views work offline.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty().
			Comment("Server-issued session UUID"),
		field.String("section").
			NotEmpty().
			Comment("UTBK section code (PU, PPU, PBM, PK, LBI, LBE, PM)"),
		field.String("action").
			NotEmpty().
			Comment("start or end"),
		field.Int("questions_attempted").
			Default(0).
			Comment("Locally counted attempts (on end only)"),
		field.Int("questions_correct").
			Default(0).
			Comment("Locally counted correct answers (on end only)"),
		field.Int("duration_secs").
			Default(0).
			Comment("Wall-clock session length in seconds (on end only)"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
		index.Fields("section"),
		index.Fields("action"),
	}
}
