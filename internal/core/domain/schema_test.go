package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchema_Valid(t *testing.T) {
	schema := DefaultSchema()
	require.NoError(t, schema.Validate())

	assert.Len(t, schema.Fields, 7)
	assert.Len(t, schema.Rules, 3)
	assert.Equal(t, []string{GroupWeb, GroupDatabase, GroupAdmin}, schema.Groups())
}

func TestDefaultSchema_FieldLookup(t *testing.T) {
	schema := DefaultSchema()

	f, ok := schema.Field(FieldWebPort)
	require.True(t, ok)
	assert.Equal(t, "services.web.ports.0", f.Path.String())
	assert.Equal(t, "3000", f.Default)

	_, ok = schema.Field("nope")
	assert.False(t, ok)
}

func TestPortTransforms_RoundTrip(t *testing.T) {
	tests := []string{"8080:3000", "3000:3000", "80:8080", "3000"}
	f, _ := DefaultSchema().Field(FieldWebPort)

	for _, stored := range tests {
		t.Run(stored, func(t *testing.T) {
			display := f.Display(stored)
			restored := f.Store(stored, display)
			assert.Equal(t, display, f.Display(restored))
		})
	}
}

func TestPortTransforms(t *testing.T) {
	f, _ := DefaultSchema().Field(FieldWebPort)

	assert.Equal(t, "8080", f.Display("8080:3000"))
	assert.Equal(t, "8080:3000", f.Store("8080:3000", "8080"))
	assert.Equal(t, "9090:3000", f.Store("8080:3000", "9090"))
	assert.Equal(t, "9090:4000", f.Store("8080:4000", "9090"))
	assert.Equal(t, "3000", f.Display("3000"))
	assert.Equal(t, "9090:3000", f.Store("3000", "9090"))
}

func TestFieldDescriptor_NoTransforms(t *testing.T) {
	f := FieldDescriptor{Key: "x"}
	assert.Equal(t, "stored", f.Display("stored"))
	assert.Equal(t, "new", f.Store("old", "new"))
}

func TestDefaultRules_Derive(t *testing.T) {
	rules := DefaultSchema().Rules

	assert.Equal(t, "http://localhost:8080", rules[0].Derive([]string{"8080:3000"}))
	assert.Equal(t, "mysql://root:secret@db:3306/core", rules[1].Derive([]string{"secret"}))
	assert.Equal(t, "mysql://system:pw@db:3306/core", rules[2].Derive([]string{"pw"}))
}

func TestValidateRules_RejectsSelfRead(t *testing.T) {
	p := MustParseFieldPath("a.b")
	err := ValidateRules([]DependentRule{{
		Name:    "loop",
		Sources: []FieldPath{p},
		Target:  p,
		Derive:  func(s []string) string { return s[0] },
	}})
	assert.ErrorIs(t, err, ErrRuleCycle)
}

func TestSchemaValidate_DuplicateKey(t *testing.T) {
	s := Schema{Fields: []FieldDescriptor{
		{Key: "a", Path: MustParseFieldPath("x")},
		{Key: "a", Path: MustParseFieldPath("y")},
	}}
	assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
}

func TestFieldValue_Masked(t *testing.T) {
	secret := FieldValue{Field: FieldDescriptor{Secret: true}, Value: "hunter2"}
	plain := FieldValue{Field: FieldDescriptor{}, Value: "admin"}
	empty := FieldValue{Field: FieldDescriptor{Secret: true}}

	assert.Equal(t, "********", secret.Masked())
	assert.Equal(t, "admin", plain.Masked())
	assert.Equal(t, "", empty.Masked())
}
