package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a    Value
		b    Value
		want bool
	}{
		{
			name: "equal strings",
			a:    StringValue("+44 123 456 7890"),
			b:    StringValue("+44 123 456 7890"),
			want: true,
		},
		{
			name: "different strings",
			a:    StringValue("alpha"),
			b:    StringValue("beta"),
			want: false,
		},
		{
			name: "equal numbers",
			a:    NumberValue(15000000),
			b:    NumberValue(15000000),
			want: true,
		},
		{
			name: "different numbers",
			a:    NumberValue(15000000),
			b:    NumberValue(16500000),
			want: false,
		},
		{
			name: "null equals null",
			a:    NullValue(),
			b:    NullValue(),
			want: true,
		},
		{
			name: "zero value counts as null",
			a:    Value{},
			b:    NullValue(),
			want: true,
		},
		{
			name: "null differs from string",
			a:    NullValue(),
			b:    StringValue("+44 123 456 7890"),
			want: false,
		},
		{
			name: "string differs from number",
			a:    StringValue("42"),
			b:    NumberValue(42),
			want: false,
		},
		{
			name: "arrays are order sensitive",
			a:    ArrayValue(StringValue("a"), StringValue("b")),
			b:    ArrayValue(StringValue("b"), StringValue("a")),
			want: false,
		},
		{
			name: "equal arrays",
			a:    ArrayValue(NumberValue(1), NumberValue(2)),
			b:    ArrayValue(NumberValue(1), NumberValue(2)),
			want: true,
		},
		{
			name: "arrays of different length",
			a:    ArrayValue(NumberValue(1)),
			b:    ArrayValue(NumberValue(1), NumberValue(2)),
			want: false,
		},
		{
			name: "objects ignore key order",
			a:    ObjectValue(map[string]Value{"gdv": NumberValue(15000000), "ltv": NumberValue(0.6)}),
			b:    ObjectValue(map[string]Value{"ltv": NumberValue(0.6), "gdv": NumberValue(15000000)}),
			want: true,
		},
		{
			name: "objects with different values",
			a:    ObjectValue(map[string]Value{"gdv": NumberValue(15000000)}),
			b:    ObjectValue(map[string]Value{"gdv": NumberValue(16500000)}),
			want: false,
		},
		{
			name: "objects with missing key",
			a:    ObjectValue(map[string]Value{"gdv": NumberValue(15000000)}),
			b:    ObjectValue(map[string]Value{"ltv": NumberValue(15000000)}),
			want: false,
		},
		{
			name: "nested structures",
			a:    ObjectValue(map[string]Value{"contacts": ArrayValue(ObjectValue(map[string]Value{"name": StringValue("J. Smith")}))}),
			b:    ObjectValue(map[string]Value{"contacts": ArrayValue(ObjectValue(map[string]Value{"name": StringValue("J. Smith")}))}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a), "equality should be symmetric")
		})
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Value
	}{
		{"null", `null`, NullValue()},
		{"string", `"Facility Letter"`, StringValue("Facility Letter")},
		{"number", `15000000`, NumberValue(15000000)},
		{"bool", `true`, BoolValue(true)},
		{"array", `[1,2]`, ArrayValue(NumberValue(1), NumberValue(2))},
		{"object", `{"gdv":15000000}`, ObjectValue(map[string]Value{"gdv": NumberValue(15000000)})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.True(t, v.Equal(tt.want), "decoded %s", tt.in)

			out, err := json.Marshal(v)
			require.NoError(t, err)

			var again Value
			require.NoError(t, json.Unmarshal(out, &again))
			assert.True(t, again.Equal(v))
		})
	}
}

func TestSourceTypePriority(t *testing.T) {
	assert.True(t, SourceDocument.HigherPriorityThan(SourceAIExtraction))
	assert.True(t, SourceAIExtraction.HigherPriorityThan(SourceDataLibrary))
	assert.True(t, SourceDataLibrary.HigherPriorityThan(SourceManual))
	assert.True(t, SourceManual.HigherPriorityThan(SourceChecklist))

	// Unknown sources sort after every known source.
	assert.True(t, SourceChecklist.HigherPriorityThan(SourceType("mystery")))
	assert.False(t, SourceType("mystery").HigherPriorityThan(SourceDocument))
}

func TestValidateKnowledgeItem(t *testing.T) {
	valid := &KnowledgeItem{
		ID:         "item-1",
		OrgID:      "org-1",
		FieldPath:  "financials.gdv",
		SourceType: SourceDocument,
		Status:     KnowledgeItemStatusActive,
		Value:      NumberValue(15000000),
	}
	assert.NoError(t, ValidateKnowledgeItem(valid))

	missing := *valid
	missing.FieldPath = ""
	assert.Error(t, ValidateKnowledgeItem(&missing))

	badSource := *valid
	badSource.SourceType = "telepathy"
	assert.Error(t, ValidateKnowledgeItem(&badSource))
}
