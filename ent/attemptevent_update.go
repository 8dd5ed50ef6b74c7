// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/gentaprep/genta-tui/ent/attemptevent"
	"github.com/gentaprep/genta-tui/ent/predicate"
)

// AttemptEventUpdate is the builder for updating AttemptEvent entities.
type AttemptEventUpdate struct {
	config
	hooks    []Hook
	mutation *AttemptEventMutation
}

// Where appends a list predicates to the AttemptEventUpdate builder.
func (_u *AttemptEventUpdate) Where(ps ...predicate.AttemptEvent) *AttemptEventUpdate {
	_u.mutation.Where(ps...)
	return _u
}

// SetSessionID sets the "session_id" field.
func (_u *AttemptEventUpdate) SetSessionID(v string) *AttemptEventUpdate {
	_u.mutation.SetSessionID(v)
	return _u
}

// SetNillableSessionID sets the "session_id" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableSessionID(v *string) *AttemptEventUpdate {
	if v != nil {
		_u.SetSessionID(*v)
	}
	return _u
}

// SetQuestionID sets the "question_id" field.
func (_u *AttemptEventUpdate) SetQuestionID(v string) *AttemptEventUpdate {
	_u.mutation.SetQuestionID(v)
	return _u
}

// SetNillableQuestionID sets the "question_id" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableQuestionID(v *string) *AttemptEventUpdate {
	if v != nil {
		_u.SetQuestionID(*v)
	}
	return _u
}

// SetSection sets the "section" field.
func (_u *AttemptEventUpdate) SetSection(v string) *AttemptEventUpdate {
	_u.mutation.SetSection(v)
	return _u
}

// SetNillableSection sets the "section" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableSection(v *string) *AttemptEventUpdate {
	if v != nil {
		_u.SetSection(*v)
	}
	return _u
}

// SetSelectedAnswer sets the "selected_answer" field.
func (_u *AttemptEventUpdate) SetSelectedAnswer(v string) *AttemptEventUpdate {
	_u.mutation.SetSelectedAnswer(v)
	return _u
}

// SetNillableSelectedAnswer sets the "selected_answer" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableSelectedAnswer(v *string) *AttemptEventUpdate {
	if v != nil {
		_u.SetSelectedAnswer(*v)
	}
	return _u
}

// SetCorrect sets the "correct" field.
func (_u *AttemptEventUpdate) SetCorrect(v bool) *AttemptEventUpdate {
	_u.mutation.SetCorrect(v)
	return _u
}

// SetNillableCorrect sets the "correct" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableCorrect(v *bool) *AttemptEventUpdate {
	if v != nil {
		_u.SetCorrect(*v)
	}
	return _u
}

// SetTimeSpentSecs sets the "time_spent_secs" field.
func (_u *AttemptEventUpdate) SetTimeSpentSecs(v int) *AttemptEventUpdate {
	_u.mutation.ResetTimeSpentSecs()
	_u.mutation.SetTimeSpentSecs(v)
	return _u
}

// SetNillableTimeSpentSecs sets the "time_spent_secs" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableTimeSpentSecs(v *int) *AttemptEventUpdate {
	if v != nil {
		_u.SetTimeSpentSecs(*v)
	}
	return _u
}

// AddTimeSpentSecs adds value to the "time_spent_secs" field.
func (_u *AttemptEventUpdate) AddTimeSpentSecs(v int) *AttemptEventUpdate {
	_u.mutation.AddTimeSpentSecs(v)
	return _u
}

// SetThetaChange sets the "theta_change" field.
func (_u *AttemptEventUpdate) SetThetaChange(v float64) *AttemptEventUpdate {
	_u.mutation.ResetThetaChange()
	_u.mutation.SetThetaChange(v)
	return _u
}

// SetNillableThetaChange sets the "theta_change" field if the given value is not nil.
func (_u *AttemptEventUpdate) SetNillableThetaChange(v *float64) *AttemptEventUpdate {
	if v != nil {
		_u.SetThetaChange(*v)
	}
	return _u
}

// AddThetaChange adds value to the "theta_change" field.
func (_u *AttemptEventUpdate) AddThetaChange(v float64) *AttemptEventUpdate {
	_u.mutation.AddThetaChange(v)
	return _u
}

// ClearThetaChange clears the value of the "theta_change" field.
func (_u *AttemptEventUpdate) ClearThetaChange() *AttemptEventUpdate {
	_u.mutation.ClearThetaChange()
	return _u
}

// Mutation returns the AttemptEventMutation object of the builder.
func (_u *AttemptEventUpdate) Mutation() *AttemptEventMutation {
	return _u.mutation
}

// Save executes the query and returns the number of nodes affected by the update operation.
func (_u *AttemptEventUpdate) Save(ctx context.Context) (int, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *AttemptEventUpdate) SaveX(ctx context.Context) int {
	affected, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return affected
}

// Exec executes the query.
func (_u *AttemptEventUpdate) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *AttemptEventUpdate) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_u *AttemptEventUpdate) check() error {
	if v, ok := _u.mutation.SessionID(); ok {
		if err := attemptevent.SessionIDValidator(v); err != nil {
			return &ValidationError{Name: "session_id", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.session_id": %w`, err)}
		}
	}
	if v, ok := _u.mutation.QuestionID(); ok {
		if err := attemptevent.QuestionIDValidator(v); err != nil {
			return &ValidationError{Name: "question_id", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.question_id": %w`, err)}
		}
	}
	if v, ok := _u.mutation.Section(); ok {
		if err := attemptevent.SectionValidator(v); err != nil {
			return &ValidationError{Name: "section", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.section": %w`, err)}
		}
	}
	if v, ok := _u.mutation.SelectedAnswer(); ok {
		if err := attemptevent.SelectedAnswerValidator(v); err != nil {
			return &ValidationError{Name: "selected_answer", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.selected_answer": %w`, err)}
		}
	}
	return nil
}

func (_u *AttemptEventUpdate) sqlSave(ctx context.Context) (_node int, err error) {
	if err := _u.check(); err != nil {
		return _node, err
	}
	_spec := sqlgraph.NewUpdateSpec(attemptevent.Table, attemptevent.Columns, sqlgraph.NewFieldSpec(attemptevent.FieldID, field.TypeInt))
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.SessionID(); ok {
		_spec.SetField(attemptevent.FieldSessionID, field.TypeString, value)
	}
	if value, ok := _u.mutation.QuestionID(); ok {
		_spec.SetField(attemptevent.FieldQuestionID, field.TypeString, value)
	}
	if value, ok := _u.mutation.Section(); ok {
		_spec.SetField(attemptevent.FieldSection, field.TypeString, value)
	}
	if value, ok := _u.mutation.SelectedAnswer(); ok {
		_spec.SetField(attemptevent.FieldSelectedAnswer, field.TypeString, value)
	}
	if value, ok := _u.mutation.Correct(); ok {
		_spec.SetField(attemptevent.FieldCorrect, field.TypeBool, value)
	}
	if value, ok := _u.mutation.TimeSpentSecs(); ok {
		_spec.SetField(attemptevent.FieldTimeSpentSecs, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedTimeSpentSecs(); ok {
		_spec.AddField(attemptevent.FieldTimeSpentSecs, field.TypeInt, value)
	}
	if value, ok := _u.mutation.ThetaChange(); ok {
		_spec.SetField(attemptevent.FieldThetaChange, field.TypeFloat64, value)
	}
	if value, ok := _u.mutation.AddedThetaChange(); ok {
		_spec.AddField(attemptevent.FieldThetaChange, field.TypeFloat64, value)
	}
	if _u.mutation.ThetaChangeCleared() {
		_spec.ClearField(attemptevent.FieldThetaChange, field.TypeFloat64)
	}
	if _node, err = sqlgraph.UpdateNodes(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{attemptevent.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return 0, err
	}
	_u.mutation.done = true
	return _node, nil
}

// AttemptEventUpdateOne is the builder for updating a single AttemptEvent entity.
type AttemptEventUpdateOne struct {
	config
	fields   []string
	hooks    []Hook
	mutation *AttemptEventMutation
}

// SetSessionID sets the "session_id" field.
func (_u *AttemptEventUpdateOne) SetSessionID(v string) *AttemptEventUpdateOne {
	_u.mutation.SetSessionID(v)
	return _u
}

// SetNillableSessionID sets the "session_id" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableSessionID(v *string) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetSessionID(*v)
	}
	return _u
}

// SetQuestionID sets the "question_id" field.
func (_u *AttemptEventUpdateOne) SetQuestionID(v string) *AttemptEventUpdateOne {
	_u.mutation.SetQuestionID(v)
	return _u
}

// SetNillableQuestionID sets the "question_id" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableQuestionID(v *string) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetQuestionID(*v)
	}
	return _u
}

// SetSection sets the "section" field.
func (_u *AttemptEventUpdateOne) SetSection(v string) *AttemptEventUpdateOne {
	_u.mutation.SetSection(v)
	return _u
}

// SetNillableSection sets the "section" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableSection(v *string) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetSection(*v)
	}
	return _u
}

// SetSelectedAnswer sets the "selected_answer" field.
func (_u *AttemptEventUpdateOne) SetSelectedAnswer(v string) *AttemptEventUpdateOne {
	_u.mutation.SetSelectedAnswer(v)
	return _u
}

// SetNillableSelectedAnswer sets the "selected_answer" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableSelectedAnswer(v *string) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetSelectedAnswer(*v)
	}
	return _u
}

// SetCorrect sets the "correct" field.
func (_u *AttemptEventUpdateOne) SetCorrect(v bool) *AttemptEventUpdateOne {
	_u.mutation.SetCorrect(v)
	return _u
}

// SetNillableCorrect sets the "correct" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableCorrect(v *bool) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetCorrect(*v)
	}
	return _u
}

// SetTimeSpentSecs sets the "time_spent_secs" field.
func (_u *AttemptEventUpdateOne) SetTimeSpentSecs(v int) *AttemptEventUpdateOne {
	_u.mutation.ResetTimeSpentSecs()
	_u.mutation.SetTimeSpentSecs(v)
	return _u
}

// SetNillableTimeSpentSecs sets the "time_spent_secs" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableTimeSpentSecs(v *int) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetTimeSpentSecs(*v)
	}
	return _u
}

// AddTimeSpentSecs adds value to the "time_spent_secs" field.
func (_u *AttemptEventUpdateOne) AddTimeSpentSecs(v int) *AttemptEventUpdateOne {
	_u.mutation.AddTimeSpentSecs(v)
	return _u
}

// SetThetaChange sets the "theta_change" field.
func (_u *AttemptEventUpdateOne) SetThetaChange(v float64) *AttemptEventUpdateOne {
	_u.mutation.ResetThetaChange()
	_u.mutation.SetThetaChange(v)
	return _u
}

// SetNillableThetaChange sets the "theta_change" field if the given value is not nil.
func (_u *AttemptEventUpdateOne) SetNillableThetaChange(v *float64) *AttemptEventUpdateOne {
	if v != nil {
		_u.SetThetaChange(*v)
	}
	return _u
}

// AddThetaChange adds value to the "theta_change" field.
func (_u *AttemptEventUpdateOne) AddThetaChange(v float64) *AttemptEventUpdateOne {
	_u.mutation.AddThetaChange(v)
	return _u
}

// ClearThetaChange clears the value of the "theta_change" field.
func (_u *AttemptEventUpdateOne) ClearThetaChange() *AttemptEventUpdateOne {
	_u.mutation.ClearThetaChange()
	return _u
}

// Mutation returns the AttemptEventMutation object of the builder.
func (_u *AttemptEventUpdateOne) Mutation() *AttemptEventMutation {
	return _u.mutation
}

// Where appends a list predicates to the AttemptEventUpdate builder.
func (_u *AttemptEventUpdateOne) Where(ps ...predicate.AttemptEvent) *AttemptEventUpdateOne {
	_u.mutation.Where(ps...)
	return _u
}

// Select allows selecting one or more fields (columns) of the returned entity.
// The default is selecting all fields defined in the entity schema.
func (_u *AttemptEventUpdateOne) Select(field string, fields ...string) *AttemptEventUpdateOne {
	_u.fields = append([]string{field}, fields...)
	return _u
}

// Save executes the query and returns the updated AttemptEvent entity.
func (_u *AttemptEventUpdateOne) Save(ctx context.Context) (*AttemptEvent, error) {
	return withHooks(ctx, _u.sqlSave, _u.mutation, _u.hooks)
}

// SaveX is like Save, but panics if an error occurs.
func (_u *AttemptEventUpdateOne) SaveX(ctx context.Context) *AttemptEvent {
	node, err := _u.Save(ctx)
	if err != nil {
		panic(err)
	}
	return node
}

// Exec executes the query on the entity.
func (_u *AttemptEventUpdateOne) Exec(ctx context.Context) error {
	_, err := _u.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_u *AttemptEventUpdateOne) ExecX(ctx context.Context) {
	if err := _u.Exec(ctx); err != nil {
		panic(err)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_u *AttemptEventUpdateOne) check() error {
	if v, ok := _u.mutation.SessionID(); ok {
		if err := attemptevent.SessionIDValidator(v); err != nil {
			return &ValidationError{Name: "session_id", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.session_id": %w`, err)}
		}
	}
	if v, ok := _u.mutation.QuestionID(); ok {
		if err := attemptevent.QuestionIDValidator(v); err != nil {
			return &ValidationError{Name: "question_id", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.question_id": %w`, err)}
		}
	}
	if v, ok := _u.mutation.Section(); ok {
		if err := attemptevent.SectionValidator(v); err != nil {
			return &ValidationError{Name: "section", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.section": %w`, err)}
		}
	}
	if v, ok := _u.mutation.SelectedAnswer(); ok {
		if err := attemptevent.SelectedAnswerValidator(v); err != nil {
			return &ValidationError{Name: "selected_answer", err: fmt.Errorf(`ent: validator failed for field "AttemptEvent.selected_answer": %w`, err)}
		}
	}
	return nil
}

func (_u *AttemptEventUpdateOne) sqlSave(ctx context.Context) (_node *AttemptEvent, err error) {
	if err := _u.check(); err != nil {
		return _node, err
	}
	_spec := sqlgraph.NewUpdateSpec(attemptevent.Table, attemptevent.Columns, sqlgraph.NewFieldSpec(attemptevent.FieldID, field.TypeInt))
	id, ok := _u.mutation.ID()
	if !ok {
		return nil, &ValidationError{Name: "id", err: errors.New(`ent: missing "AttemptEvent.id" for update`)}
	}
	_spec.Node.ID.Value = id
	if fields := _u.fields; len(fields) > 0 {
		_spec.Node.Columns = make([]string, 0, len(fields))
		_spec.Node.Columns = append(_spec.Node.Columns, attemptevent.FieldID)
		for _, f := range fields {
			if !attemptevent.ValidColumn(f) {
				return nil, &ValidationError{Name: f, err: fmt.Errorf("ent: invalid field %q for query", f)}
			}
			if f != attemptevent.FieldID {
				_spec.Node.Columns = append(_spec.Node.Columns, f)
			}
		}
	}
	if ps := _u.mutation.predicates; len(ps) > 0 {
		_spec.Predicate = func(selector *sql.Selector) {
			for i := range ps {
				ps[i](selector)
			}
		}
	}
	if value, ok := _u.mutation.SessionID(); ok {
		_spec.SetField(attemptevent.FieldSessionID, field.TypeString, value)
	}
	if value, ok := _u.mutation.QuestionID(); ok {
		_spec.SetField(attemptevent.FieldQuestionID, field.TypeString, value)
	}
	if value, ok := _u.mutation.Section(); ok {
		_spec.SetField(attemptevent.FieldSection, field.TypeString, value)
	}
	if value, ok := _u.mutation.SelectedAnswer(); ok {
		_spec.SetField(attemptevent.FieldSelectedAnswer, field.TypeString, value)
	}
	if value, ok := _u.mutation.Correct(); ok {
		_spec.SetField(attemptevent.FieldCorrect, field.TypeBool, value)
	}
	if value, ok := _u.mutation.TimeSpentSecs(); ok {
		_spec.SetField(attemptevent.FieldTimeSpentSecs, field.TypeInt, value)
	}
	if value, ok := _u.mutation.AddedTimeSpentSecs(); ok {
		_spec.AddField(attemptevent.FieldTimeSpentSecs, field.TypeInt, value)
	}
	if value, ok := _u.mutation.ThetaChange(); ok {
		_spec.SetField(attemptevent.FieldThetaChange, field.TypeFloat64, value)
	}
	if value, ok := _u.mutation.AddedThetaChange(); ok {
		_spec.AddField(attemptevent.FieldThetaChange, field.TypeFloat64, value)
	}
	if _u.mutation.ThetaChangeCleared() {
		_spec.ClearField(attemptevent.FieldThetaChange, field.TypeFloat64)
	}
	_node = &AttemptEvent{config: _u.config}
	_spec.Assign = _node.assignValues
	_spec.ScanValues = _node.scanValues
	if err = sqlgraph.UpdateNode(ctx, _u.driver, _spec); err != nil {
		if _, ok := err.(*sqlgraph.NotFoundError); ok {
			err = &NotFoundError{attemptevent.Label}
		} else if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	_u.mutation.done = true
	return _node, nil
}
