package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is one shared contract schema. The backend validates requests
// against the same definitions; the client validates the responses it
// consumes so contract drift surfaces as a classified error instead of a
// zero-valued struct.
type Schema struct {
	Name       string
	Definition map[string]any
}

// compiledSchemas caches compiled schemas by name.
var compiledSchemas sync.Map // map[string]*jsonschema.Schema

// Validate checks raw JSON against the named shared schema.
func Validate(name string, raw []byte) error {
	schema, ok := registry[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("invalid JSON for %s: %w", name, err)
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return fmt.Errorf("compile schema %q: %w", name, err)
	}

	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("response does not match %s: %w", name, err)
	}
	return nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiledSchemas.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a parsed JSON value, not Go maps with typed
	// values. Round-trip through encoding/json to normalize.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, err
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, err
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, err
	}

	compiledSchemas.Store(schema.Name, compiled)
	return compiled, nil
}

// Schema names used by the client.
const (
	SchemaSession       = "session-response"
	SchemaSessionList   = "session-list-response"
	SchemaQuestion      = "question-response"
	SchemaAttempt       = "attempt-response"
	SchemaAttemptDetail = "attempt-detail-response"
	SchemaJobCompleted  = "job-completed-response"
	SchemaReadiness     = "readiness-overview-response"
	SchemaSectionDetail = "section-readiness-response"
	SchemaProgress      = "progress-response"
	SchemaUser          = "user-response"
)

var answerEnum = map[string]any{
	"type": "string",
	"enum": []any{"A", "B", "C", "D", "E"},
}

var sectionEnum = map[string]any{
	"type": "string",
	"enum": []any{"PU", "PPU", "PBM", "PK", "LBI", "LBE", "PM"},
}

func nullable(def map[string]any) map[string]any {
	return map[string]any{"anyOf": []any{def, map[string]any{"type": "null"}}}
}

var sessionDefinition = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":                  map[string]any{"type": "string"},
		"started_at":          map[string]any{"type": "string"},
		"ended_at":            nullable(map[string]any{"type": "string"}),
		"duration_minutes":    nullable(map[string]any{"type": "integer"}),
		"questions_attempted": map[string]any{"type": "integer"},
		"questions_correct":   map[string]any{"type": "integer"},
		"accuracy_in_session": nullable(map[string]any{"type": "number"}),
		"section":             nullable(sectionEnum),
	},
	"required": []any{"id", "started_at", "questions_attempted", "questions_correct"},
}

var registry = map[string]*Schema{
	SchemaSession: {
		Name:       SchemaSession,
		Definition: sessionDefinition,
	},
	SchemaSessionList: {
		Name: SchemaSessionList,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"data":       map[string]any{"type": "array", "items": sessionDefinition},
				"total":      map[string]any{"type": "integer"},
				"page":       map[string]any{"type": "integer"},
				"limit":      map[string]any{"type": "integer"},
				"totalPages": map[string]any{"type": "integer"},
			},
			"required": []any{"data", "total", "page", "limit"},
		},
	},
	SchemaQuestion: {
		Name: SchemaQuestion,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":             map[string]any{"type": "string"},
				"section":        sectionEnum,
				"subType":        nullable(map[string]any{"type": "string"}),
				"difficultyIrt":  nullable(map[string]any{"type": "number"}),
				"text":           map[string]any{"type": "string"},
				"optionA":        map[string]any{"type": "string"},
				"optionB":        map[string]any{"type": "string"},
				"optionC":        map[string]any{"type": "string"},
				"optionD":        map[string]any{"type": "string"},
				"optionE":        map[string]any{"type": "string"},
				"avgTimeSeconds": nullable(map[string]any{"type": "integer"}),
			},
			"required": []any{"id", "section", "text", "optionA", "optionB", "optionC", "optionD", "optionE"},
		},
	},
	SchemaAttempt: {
		Name: SchemaAttempt,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":                 map[string]any{"type": "string"},
				"question_id":        map[string]any{"type": "string"},
				"selected_answer":    answerEnum,
				"is_correct":         map[string]any{"type": "boolean"},
				"time_spent_seconds": map[string]any{"type": "integer", "minimum": 1, "maximum": 600},
				"user_theta_before":  nullable(map[string]any{"type": "number"}),
				"user_theta_after":   nullable(map[string]any{"type": "number"}),
				"theta_change":       nullable(map[string]any{"type": "number"}),
				"feedback_generated": map[string]any{"type": "boolean"},
				"session_id":         nullable(map[string]any{"type": "string"}),
				"created_at":         map[string]any{"type": "string"},
				"job": nullable(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"job_id":                       map[string]any{"type": "string"},
						"status":                       map[string]any{"type": "string"},
						"estimated_completion_seconds": map[string]any{"type": "integer"},
						"check_status_url":             map[string]any{"type": "string"},
					},
					"required": []any{"job_id", "status"},
				}),
			},
			"required": []any{"id", "question_id", "selected_answer", "is_correct", "time_spent_seconds", "created_at"},
		},
	},
	SchemaAttemptDetail: {
		Name: SchemaAttemptDetail,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":                 map[string]any{"type": "string"},
				"question_id":        map[string]any{"type": "string"},
				"selected_answer":    answerEnum,
				"correct_answer":     answerEnum,
				"is_correct":         map[string]any{"type": "boolean"},
				"time_spent_seconds": map[string]any{"type": "integer"},
				"theta_change":       nullable(map[string]any{"type": "number"}),
				"created_at":         map[string]any{"type": "string"},
				"question": nullable(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"text":        map[string]any{"type": "string"},
						"explanation": nullable(map[string]any{"type": "string"}),
					},
					"required": []any{"text"},
				}),
				"feedback": nullable(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                 map[string]any{"type": "string"},
						"feedback_text":      map[string]any{"type": "string"},
						"model_used":         map[string]any{"type": "string"},
						"generation_time_ms": nullable(map[string]any{"type": "integer"}),
						"is_helpful":         nullable(map[string]any{"type": "boolean"}),
					},
					"required": []any{"id", "feedback_text", "model_used"},
				}),
			},
			"required": []any{"id", "question_id", "selected_answer", "correct_answer", "is_correct", "created_at"},
		},
	},
	SchemaJobCompleted: {
		Name: SchemaJobCompleted,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"job_id":     map[string]any{"type": "string"},
				"status":     map[string]any{"type": "string"},
				"attempt_id": map[string]any{"type": "string"},
				"feedback": nullable(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                 map[string]any{"type": "string"},
						"feedback_text":      map[string]any{"type": "string"},
						"model_used":         map[string]any{"type": "string"},
						"generation_time_ms": nullable(map[string]any{"type": "integer"}),
					},
					"required": []any{"id", "feedback_text", "model_used"},
				}),
			},
			"required": []any{"job_id", "status"},
		},
	},
	SchemaReadiness: {
		Name: SchemaReadiness,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"overall_readiness":  map[string]any{"type": "number"},
				"total_attempts":     map[string]any{"type": "integer"},
				"total_correct":      map[string]any{"type": "integer"},
				"overall_accuracy":   map[string]any{"type": "number"},
				"tps_readiness":      map[string]any{"type": "number"},
				"literasi_readiness": map[string]any{"type": "number"},
			},
			"required": []any{"overall_readiness", "total_attempts", "overall_accuracy"},
		},
	},
	SchemaSectionDetail: {
		Name: SchemaSectionDetail,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"section":              sectionEnum,
				"readiness_percentage": map[string]any{"type": "number"},
				"current_theta":        map[string]any{"type": "number"},
				"target_theta":         map[string]any{"type": "number"},
			},
			"required": []any{"section", "readiness_percentage", "current_theta", "target_theta"},
		},
	},
	SchemaProgress: {
		Name: SchemaProgress,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"period_days":               map[string]any{"type": "integer"},
				"total_questions_attempted": map[string]any{"type": "integer"},
				"total_correct":             map[string]any{"type": "integer"},
				"average_accuracy":          map[string]any{"type": "number"},
				"accuracy_trend":            map[string]any{"type": "array"},
				"section_breakdown":         map[string]any{"type": "array"},
			},
			"required": []any{"period_days", "total_questions_attempted", "average_accuracy"},
		},
	},
	SchemaUser: {
		Name: SchemaUser,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":    map[string]any{"type": "string"},
				"email": map[string]any{"type": "string"},
			},
			"required": []any{"id", "email"},
		},
	},
}
