package config

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_CoverConfigKeys(t *testing.T) {
	var tagged []string
	typ := reflect.TypeOf(Config{})
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("koanf"); tag != "" && tag != "-" {
			tagged = append(tagged, tag)
		}
	}

	var keys []string
	for _, s := range Settings() {
		keys = append(keys, s.Key)
		assert.NotEmpty(t, s.Description, s.Key)
	}
	assert.ElementsMatch(t, tagged, keys)
}

func TestSetting_EnvVar(t *testing.T) {
	assert.Equal(t, "MODGUARD_STATE_PATH", Setting{Key: "state_path"}.EnvVar())
}

func TestSettings_EnvVarIsRead(t *testing.T) {
	for _, s := range Settings() {
		if s.Key != "workers" {
			continue
		}
		ResetConfig()
		t.Setenv(s.EnvVar(), "3")
		dir := t.TempDir()

		cfg, err := LoadConfig(writeConfig(t, dir, "verbose: false\n"), nil)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Workers)
		return
	}
	t.Fatal("workers setting missing")
}

func TestDefaults_SkipUnsetKeys(t *testing.T) {
	d := defaults()
	assert.Equal(t, DefaultStateFile, d["state_path"])
	assert.Contains(t, d, "workers")
	assert.NotContains(t, d, "max_file_size")
	assert.NotContains(t, d, "constraints")
}
