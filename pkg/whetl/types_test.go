package whetl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/whetl/pkg/whetl"
)

func TestUpsertSpec_Validate(t *testing.T) {
	valid := whetl.UpsertSpec{
		SourceTable:    "staging.people",
		TargetTable:    "public.people",
		UniquenessKeys: []string{"id"},
		Columns:        []string{"id", "name"},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*whetl.UpsertSpec)
	}{
		{"no source", func(s *whetl.UpsertSpec) { s.SourceTable = "" }},
		{"no target", func(s *whetl.UpsertSpec) { s.TargetTable = " " }},
		{"no keys", func(s *whetl.UpsertSpec) { s.UniquenessKeys = nil }},
		{"no columns", func(s *whetl.UpsertSpec) { s.Columns = nil }},
		{"key outside columns", func(s *whetl.UpsertSpec) { s.UniquenessKeys = []string{"email"} }},
		{"function on unknown column", func(s *whetl.UpsertSpec) {
			s.ColumnFunctions = map[string][]string{"email": {"TRIM"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := valid
			tt.mutate(&spec)
			err := spec.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, whetl.ErrInvalidUpsertSpec))
		})
	}
}

func TestUpsertSpec_NonKeyColumns(t *testing.T) {
	spec := whetl.UpsertSpec{UniquenessKeys: []string{"id"}, Columns: []string{"id", "name", "age"}}
	assert.Equal(t, []string{"name", "age"}, spec.NonKeyColumns())

	spec.Columns = []string{"id"}
	assert.Empty(t, spec.NonKeyColumns())
}

func TestParseStatus(t *testing.T) {
	st, err := whetl.ParseStatus(" success ")
	require.NoError(t, err)
	assert.Equal(t, whetl.StatusSuccess, st)

	_, err = whetl.ParseStatus("DONE")
	assert.ErrorIs(t, err, whetl.ErrInvalidConfig)
}

func TestStatus_CanCreate(t *testing.T) {
	want := map[whetl.Status]bool{
		whetl.StatusStarted: true,
		whetl.StatusSkipped: true,
		whetl.StatusSuccess: false,
		whetl.StatusFail:    false,
		whetl.StatusUnknown: false,
	}
	for st, ok := range want {
		assert.Equal(t, ok, st.CanCreate(), st.String())
	}
}

func TestStatus_IsDone(t *testing.T) {
	want := map[whetl.Status]bool{
		whetl.StatusSuccess: true,
		whetl.StatusSkipped: true,
		whetl.StatusStarted: false,
		whetl.StatusFail:    false,
		whetl.StatusUnknown: false,
	}
	for st, done := range want {
		assert.Equal(t, done, st.IsDone(), st.String())
	}
}

func TestLocation(t *testing.T) {
	loc := whetl.Location{Bucket: "media", Prefix: "raw/2024"}
	assert.Equal(t, "s3://media/raw/2024", loc.String())
	assert.Equal(t, "s3://media/raw/2024/a.csv", loc.Join("a.csv").String())
	assert.Equal(t, "s3://media", whetl.Location{Bucket: "media"}.String())
	assert.Equal(t, "s3://media/a.csv", whetl.Location{Bucket: "media"}.Join("/a.csv").String())
}

func TestDialect(t *testing.T) {
	d, err := whetl.ParseDialect("")
	require.NoError(t, err)
	assert.Equal(t, "GETDATE()", d.Now())

	d, err = whetl.ParseDialect("PostgreSQL")
	require.NoError(t, err)
	assert.Equal(t, "now()", d.Now())

	_, err = whetl.ParseDialect("oracle")
	assert.ErrorIs(t, err, whetl.ErrInvalidConfig)
}

func TestConnectionConfig_Validate(t *testing.T) {
	cfg := &whetl.ConnectionConfig{Host: "h", Database: "d", Password: "p", Port: 5439}
	require.NoError(t, cfg.Validate())

	iam := &whetl.ConnectionConfig{Host: "h", Database: "d", Port: 5439, AuthMethod: whetl.AuthMethodAWSIAM}
	err := iam.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
	assert.Contains(t, err.Error(), "aws_region")
	assert.ErrorIs(t, err, whetl.ErrUnsupportedAuthMethod, "dialect defaults away from postgres")

	iam = &whetl.ConnectionConfig{Host: "h", Database: "d", Port: 5439, Username: "u", AWSRegion: "us-east-1",
		AuthMethod: whetl.AuthMethodAWSIAM, Dialect: whetl.DialectPostgres}
	require.NoError(t, iam.Validate())

	iam.Dialect = whetl.DialectRedshift
	assert.ErrorIs(t, iam.Validate(), whetl.ErrUnsupportedAuthMethod)

	missing := &whetl.ConnectionConfig{Port: 5432}
	err = missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host")
	assert.Contains(t, err.Error(), "database")
	assert.Contains(t, err.Error(), "password")
}

func TestParseAuthMethod(t *testing.T) {
	m, err := whetl.ParseAuthMethod("AWS_IAM")
	require.NoError(t, err)
	assert.Equal(t, whetl.AuthMethodAWSIAM, m)

	_, err = whetl.ParseAuthMethod("kerberos")
	assert.ErrorIs(t, err, whetl.ErrUnsupportedAuthMethod)
}
