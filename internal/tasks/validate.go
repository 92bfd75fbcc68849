package tasks

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// maxBodyBytes bounds every inbound request body.
const maxBodyBytes = 1 << 20

// jsonAPI decodes generic documents with json.Number so integer checks in
// the schemas see the literal value.
var jsonAPI = sonic.Config{
	EscapeHTML:     true,
	UseNumber:      true,
	CopyString:     true,
	ValidateString: true,
}.Froze()

const taskSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 120},
		"is_completed": {"type": "boolean"}
	}
}`

var (
	createSchema = mustCompile("create.json", taskSchema)

	bulkCreateSchema = mustCompile("bulk_create.json", `{
	"type": "object",
	"required": ["tasks"],
	"properties": {
		"tasks": {"type": "array", "items": `+taskSchema+`}
	}
}`)

	bulkDeleteSchema = mustCompile("bulk_delete.json", `{
	"type": "object",
	"required": ["tasks"],
	"properties": {
		"tasks": {"type": "array", "items": {"type": "integer"}}
	}
}`)
)

func mustCompile(name, schema string) *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(name, strings.NewReader(schema)); err != nil {
		panic(fmt.Sprintf("tasks: add schema %s: %v", name, err))
	}
	return c.MustCompile(name)
}

type createTaskRequest struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"is_completed"`
}

func (r createTaskRequest) input() TaskInput {
	in := TaskInput{}
	if r.Title != nil {
		in.Title = *r.Title
	}
	if r.IsCompleted != nil {
		in.IsCompleted = *r.IsCompleted
	}
	return in
}

type bulkCreateRequest struct {
	Tasks *[]createTaskRequest `json:"tasks"`
}

type bulkDeleteRequest struct {
	Tasks *[]int64 `json:"tasks"`
}

// ValidateTitle checks the title constraints shared by every write.
func ValidateTitle(title string) error {
	if title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return &ValidationError{
			Field:   "title",
			Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLen),
		}
	}
	return nil
}

// ValidateInput checks a single task input.
func ValidateInput(in TaskInput) error {
	return ValidateTitle(in.Title)
}

// ValidateBatch checks every input of a bulk create. The error names the
// first offending entry by index.
func ValidateBatch(ins []TaskInput) error {
	for i, in := range ins {
		if err := ValidateInput(in); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return &ValidationError{Field: fmt.Sprintf("tasks/%d/%s", i, ve.Field), Message: ve.Message}
			}
			return err
		}
	}
	return nil
}

// DecodeCreate reads a single-task body (create or full update).
func DecodeCreate(r io.Reader) (TaskInput, error) {
	var req createTaskRequest
	if err := decode(r, createSchema, &req, errInvalidJSON); err != nil {
		return TaskInput{}, err
	}
	in := req.input()
	if err := ValidateInput(in); err != nil {
		return TaskInput{}, err
	}
	return in, nil
}

// DecodeBulkCreate reads a bulk-create body. Every entry is checked; the
// first invalid one rejects the whole batch.
func DecodeBulkCreate(r io.Reader) ([]TaskInput, error) {
	var req bulkCreateRequest
	if err := decode(r, bulkCreateSchema, &req, errInvalidJSON); err != nil {
		return nil, err
	}
	if req.Tasks == nil {
		return nil, &ValidationError{Field: "tasks", Message: "tasks must be provided as a list"}
	}
	out := make([]TaskInput, 0, len(*req.Tasks))
	for _, t := range *req.Tasks {
		out = append(out, t.input())
	}
	if err := ValidateBatch(out); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeBulkDelete reads a bulk-delete body of task ids.
func DecodeBulkDelete(r io.Reader) ([]int64, error) {
	var req bulkDeleteRequest
	idsErr := &ValidationError{Field: "tasks", Message: "tasks must be a list of integer ids"}
	if err := decode(r, bulkDeleteSchema, &req, idsErr); err != nil {
		return nil, err
	}
	if req.Tasks == nil {
		return nil, &ValidationError{Field: "tasks", Message: "tasks must be provided as a list of ids"}
	}
	return *req.Tasks, nil
}

var errInvalidJSON = &ValidationError{Message: "invalid JSON"}

// decode schema-checks the body, then decodes it into dst. Values the schema
// accepts but dst cannot hold (1.0 for an int64) are reported as typeErr.
func decode(r io.Reader, schema *jsonschema.Schema, dst any, typeErr *ValidationError) error {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return &ValidationError{Message: "could not read request body"}
	}
	if len(body) > maxBodyBytes {
		return &ValidationError{Message: "request body too large"}
	}

	var doc any
	if err := jsonAPI.Unmarshal(body, &doc); err != nil {
		return errInvalidJSON
	}
	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	if err := jsonAPI.Unmarshal(body, dst); err != nil {
		return typeErr
	}
	return nil
}

// schemaError reduces a schema failure to its first leaf cause.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error()}
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{
		Field:   strings.TrimPrefix(ve.InstanceLocation, "/"),
		Message: ve.Message,
	}
}
