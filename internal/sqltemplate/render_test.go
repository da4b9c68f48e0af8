package sqltemplate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/whetl/pkg/whetl"
)

func TestRender_Literals(t *testing.T) {
	five := 5
	var nilInt *int

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, "NULL"},
		{"string", "abc", "'abc'"},
		{"quote doubled", "O'Brien", "'O''Brien'"},
		{"backslash uses E string", `a\b`, `E'a\\b'`},
		{"int", 42, "42"},
		{"negative int64", int64(-7), "-7"},
		{"uint", uint(3), "3"},
		{"float", 1.5, "1.5"},
		{"bool true", true, "true"},
		{"bool false", false, "false"},
		{"date at midnight", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), "'2024-03-01'"},
		{"timestamp", time.Date(2024, 3, 1, 10, 30, 5, 0, time.UTC), "'2024-03-01 10:30:05'"},
		{"id set", whetl.IDSet{1, 2, 3}, "(1, 2, 3)"},
		{"empty id set", whetl.IDSet{}, "(NULL)"},
		{"string slice", []string{"a", "b'c"}, "('a', 'b''c')"},
		{"empty slice", []string{}, "(NULL)"},
		{"raw strips quotes", Raw(`"media".'imports'`), "media.imports"},
		{"status", whetl.StatusSuccess, "'SUCCESS'"},
		{"stringer", whetl.Location{Bucket: "b", Prefix: "p"}, "'s3://b/p'"},
		{"pointer", &five, "5"},
		{"nil pointer", nilInt, "NULL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render("SELECT %(v)s", Params{"v": tt.value})
			require.NoError(t, err)
			assert.Equal(t, "SELECT "+tt.want, got)
		})
	}
}

func TestRender_PercentHandling(t *testing.T) {
	got, err := Render("SELECT 100%% AS pct, name LIKE 'a%' FROM t WHERE id = %(id)s", Params{"id": 1})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 100% AS pct, name LIKE 'a%' FROM t WHERE id = 1", got)
}

func TestRender_ValuesAreNotReexpanded(t *testing.T) {
	got, err := Render("SELECT %(a)s, %(b)s", Params{"a": "%(b)s", "b": 2})
	require.NoError(t, err)
	assert.Equal(t, "SELECT '%(b)s', 2", got)
}

func TestRender_RepeatedPlaceholder(t *testing.T) {
	got, err := Render("%(x)s = %(x)s", Params{"x": "k"})
	require.NoError(t, err)
	assert.Equal(t, "'k' = 'k'", got)
}

func TestRender_MissingParameter(t *testing.T) {
	_, err := Render("SELECT %(present)s, %(absent)s", Params{"present": 1})
	require.Error(t, err)

	var missing *whetl.MissingParameterError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, "absent", missing.Name)
	assert.ErrorIs(t, err, whetl.ErrMissingParameter)
}

func TestRender_Malformed(t *testing.T) {
	for _, tmpl := range []string{"SELECT %(a", "SELECT %(a)d", "SELECT %()s"} {
		_, err := Render(tmpl, Params{"a": 1})
		assert.ErrorIs(t, err, ErrMalformedPlaceholder, tmpl)
	}
}

func TestRender_UnsupportedValue(t *testing.T) {
	_, err := Render("SELECT %(v)s", Params{"v": struct{}{}})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = Render("SELECT %(v)s", Params{"v": []byte("x")})
	assert.ErrorIs(t, err, ErrUnsupportedValue)
}

func TestRender_DedentsBeforeSubstitution(t *testing.T) {
	tmpl := `
		SELECT *
		  FROM t
		 WHERE v = %(v)s
	`
	got, err := Render(tmpl, Params{"v": "line1\n    line2"})
	require.NoError(t, err)
	assert.Equal(t, "\nSELECT *\n  FROM t\n WHERE v = 'line1\n    line2'\n", got)
}

func TestRender_NoPlaceholdersNoParams(t *testing.T) {
	got, err := Render("SELECT 1", nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", got)
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("%(a)s %% %(b)s %(a)s LIKE 'x%'")
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestMerge(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}
	got := Merge(base, map[string]any{"b": 3}, map[string]any{"c": 4})
	assert.Equal(t, Params{"a": 1, "b": 3, "c": 4}, got)
	assert.Equal(t, 2, base["b"])
}

func TestEscape_RoundTrips(t *testing.T) {
	sql := "SELECT '%(not_a_param)s', 'a%' LIKE 'a%%'"
	got, err := Render(Escape(sql), nil)
	require.NoError(t, err)
	assert.Equal(t, sql, got)
}
