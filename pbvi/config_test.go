package pbvi

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		want    func(c *Config)
		wantErr error
	}{
		{
			name: "正常_空は既定値",
			yaml: "",
			want: func(c *Config) {},
		},
		{
			name: "正常_一部上書き",
			yaml: "iterations: 5\nseed: 9\ntrials: 10\n",
			want: func(c *Config) {
				c.Iterations = 5
				c.Seed = 9
				c.Trials = 10
			},
		},
		{
			name: "正常_初期値",
			yaml: "initial_value: -25.5\nparallelism: 2\n",
			want: func(c *Config) {
				c.InitialValue = ptr(-25.5)
				c.Parallelism = 2
			},
		},
		{
			name:    "異常_試行数0",
			yaml:    "trials: 0\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "異常_信念点数が負",
			yaml:    "belief_points: -1\n",
			wantErr: ErrInvalidConfig,
		},
		{
			name:    "異常_YAML不正",
			yaml:    "iterations: [1, 2\n",
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseConfig([]byte(tc.yaml))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			want := DefaultConfig()
			tc.want(&want)
			assert.Equal(t, want, got)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultBeliefPoints, c.BeliefPoints)
	assert.Equal(t, DefaultIterations, c.Iterations)
	assert.Equal(t, DefaultTrials, c.Trials)
	assert.Equal(t, uint64(DefaultSeed), c.Seed)
	assert.Equal(t, runtime.NumCPU(), c.Parallelism)
	assert.Nil(t, c.InitialValue)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solver.yaml")
	require.NoError(t, os.WriteFile(path, []byte("belief_points: 250\n"), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 250, c.BeliefPoints)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
