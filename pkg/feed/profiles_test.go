package feed

import (
	"os"
	"path/filepath"
	"testing"

	"feedscraper/pkg/errors"
	"feedscraper/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProfiles(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "array", input: `["alice", "bob"]`, want: []string{"alice", "bob"}},
		{name: "empty array", input: `[]`, want: []string{}},
		{name: "object", input: `{"profiles": ["alice"]}`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
		{name: "string", input: `"alice"`, wantErr: true},
		{name: "mixed array", input: `["alice", 3]`, wantErr: true},
		{name: "invalid json", input: `["alice"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProfiles([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadProfilesMissingFile(t *testing.T) {
	_, err := LoadProfiles(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestAgentLoadProfilesDoesNotMutateOnFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"alice": true}`), 0644))

	agent := NewAgent(nil, &fakeSink{}, Options{MaxPostsPerProfile: 1}, logger.NewNopLogger())
	agent.SetProfiles([]string{"carol"})

	_, err := agent.LoadProfiles(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array of strings")
	assert.Equal(t, []string{"carol"}, agent.Profiles())

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`["alice","bob"]`), 0644))
	loaded, err := agent.LoadProfiles(good)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, loaded)
	assert.Equal(t, []string{"alice", "bob"}, agent.Profiles())
}

func TestWriteSampleProfiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "profiles.json")
	require.NoError(t, WriteSampleProfiles(path))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	assert.Equal(t, SampleProfiles, profiles)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"elonmusk\"")
}
