// Code generated by ent, DO NOT EDIT.

package ent

import (
	"time"

	"github.com/gentaprep/genta-tui/ent/attemptevent"
	"github.com/gentaprep/genta-tui/ent/schema"
	"github.com/gentaprep/genta-tui/ent/sessionevent"
)

// The init function reads all schema descriptors with runtime code
// (default values, validators, hooks and policies) and stitches it
// to their package variables.
func init() {
	attempteventMixin := schema.AttemptEvent{}.Mixin()
	attempteventMixinFields0 := attempteventMixin[0].Fields()
	_ = attempteventMixinFields0
	attempteventFields := schema.AttemptEvent{}.Fields()
	_ = attempteventFields
	// attempteventDescTimestamp is the schema descriptor for timestamp field.
	attempteventDescTimestamp := attempteventMixinFields0[1].Descriptor()
	// attemptevent.DefaultTimestamp holds the default value on creation for the timestamp field.
	attemptevent.DefaultTimestamp = attempteventDescTimestamp.Default.(func() time.Time)
	// attempteventDescSessionID is the schema descriptor for session_id field.
	attempteventDescSessionID := attempteventFields[0].Descriptor()
	// attemptevent.SessionIDValidator is a validator for the "session_id" field. It is called by the builders before save.
	attemptevent.SessionIDValidator = attempteventDescSessionID.Validators[0].(func(string) error)
	// attempteventDescQuestionID is the schema descriptor for question_id field.
	attempteventDescQuestionID := attempteventFields[1].Descriptor()
	// attemptevent.QuestionIDValidator is a validator for the "question_id" field. It is called by the builders before save.
	attemptevent.QuestionIDValidator = attempteventDescQuestionID.Validators[0].(func(string) error)
	// attempteventDescSection is the schema descriptor for section field.
	attempteventDescSection := attempteventFields[2].Descriptor()
	// attemptevent.SectionValidator is a validator for the "section" field. It is called by the builders before save.
	attemptevent.SectionValidator = attempteventDescSection.Validators[0].(func(string) error)
	// attempteventDescSelectedAnswer is the schema descriptor for selected_answer field.
	attempteventDescSelectedAnswer := attempteventFields[3].Descriptor()
	// attemptevent.SelectedAnswerValidator is a validator for the "selected_answer" field. It is called by the builders before save.
	attemptevent.SelectedAnswerValidator = attempteventDescSelectedAnswer.Validators[0].(func(string) error)
	sessioneventMixin := schema.SessionEvent{}.Mixin()
	sessioneventMixinFields0 := sessioneventMixin[0].Fields()
	_ = sessioneventMixinFields0
	sessioneventFields := schema.SessionEvent{}.Fields()
	_ = sessioneventFields
	// sessioneventDescTimestamp is the schema descriptor for timestamp field.
	sessioneventDescTimestamp := sessioneventMixinFields0[1].Descriptor()
	// sessionevent.DefaultTimestamp holds the default value on creation for the timestamp field.
	sessionevent.DefaultTimestamp = sessioneventDescTimestamp.Default.(func() time.Time)
	// sessioneventDescSessionID is the schema descriptor for session_id field.
	sessioneventDescSessionID := sessioneventFields[0].Descriptor()
	// sessionevent.SessionIDValidator is a validator for the "session_id" field. It is called by the builders before save.
	sessionevent.SessionIDValidator = sessioneventDescSessionID.Validators[0].(func(string) error)
	// sessioneventDescSection is the schema descriptor for section field.
	sessioneventDescSection := sessioneventFields[1].Descriptor()
	// sessionevent.SectionValidator is a validator for the "section" field. It is called by the builders before save.
	sessionevent.SectionValidator = sessioneventDescSection.Validators[0].(func(string) error)
	// sessioneventDescAction is the schema descriptor for action field.
	sessioneventDescAction := sessioneventFields[2].Descriptor()
	// sessionevent.ActionValidator is a validator for the "action" field. It is called by the builders before save.
	sessionevent.ActionValidator = sessioneventDescAction.Validators[0].(func(string) error)
	// sessioneventDescQuestionsAttempted is the schema descriptor for questions_attempted field.
	sessioneventDescQuestionsAttempted := sessioneventFields[3].Descriptor()
	// sessionevent.DefaultQuestionsAttempted holds the default value on creation for the questions_attempted field.
	sessionevent.DefaultQuestionsAttempted = sessioneventDescQuestionsAttempted.Default.(int)
	// sessioneventDescQuestionsCorrect is the schema descriptor for questions_correct field.
	sessioneventDescQuestionsCorrect := sessioneventFields[4].Descriptor()
	// sessionevent.DefaultQuestionsCorrect holds the default value on creation for the questions_correct field.
	sessionevent.DefaultQuestionsCorrect = sessioneventDescQuestionsCorrect.Default.(int)
	// sessioneventDescDurationSecs is the schema descriptor for duration_secs field.
	sessioneventDescDurationSecs := sessioneventFields[5].Descriptor()
	// sessionevent.DefaultDurationSecs holds the default value on creation for the duration_secs field.
	sessionevent.DefaultDurationSecs = sessioneventDescDurationSecs.Default.(int)
}
