package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mhpenta/designgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "designgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "imagen-4", cfg.Gemini.Model)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BackendFile, cfg.Export.Backend)
	assert.Equal(t, designgen.DefaultExportName, cfg.Export.Name)
	assert.Equal(t, designgen.DefaultPrompt, cfg.InitialPrompt())
	assert.Zero(t, cfg.Generation.Timeout)
}

func TestLoader_Priority(t *testing.T) {
	path := writeConfig(t, `
gemini:
  model: nano-banana
generation:
  prompt: a cat astronaut logo
  timeout: 90s
  aspect_ratio: "3:4"
server:
  addr: ":9000"
export:
  backend: s3
  bucket: designs
log:
  level: debug
`)

	l := NewLoader().WithConfigPath(path)
	l.lookupEnv = envMap(map[string]string{
		"GEMINI_API_KEY":                          "from-gemini-env",
		"DESIGNGEN_SERVER_ADDR":                   ":7000",
		"DESIGNGEN_GENERATION_MAX_WAIT":           "5s",
		"DESIGNGEN_GENERATION_WAIT_ON_RATE_LIMIT": "true",
	})

	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "nano-banana", cfg.Gemini.Model)
	assert.Equal(t, "from-gemini-env", cfg.Gemini.APIKey)
	assert.Equal(t, "a cat astronaut logo", cfg.InitialPrompt())
	assert.Equal(t, 90*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, ":7000", cfg.Server.Addr, "env beats YAML")
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout, "defaults survive")
	assert.Equal(t, "designs", cfg.Export.Bucket)
	assert.Equal(t, "debug", cfg.Log.Level)

	req := cfg.RequestConfig()
	assert.Equal(t, designgen.ModelNanoBanana, req.Model)
	assert.Equal(t, designgen.AspectRatio3x4, req.AspectRatio)
	assert.Equal(t, "image/jpeg", req.OutputMIMEType)
	assert.True(t, req.WaitOnRateLimit)
	assert.Equal(t, 5*time.Second, req.MaxWaitDuration)
}

func TestLoader_PrefixedKeyBeatsGeminiEnv(t *testing.T) {
	l := NewLoader()
	l.lookupEnv = envMap(map[string]string{
		"GEMINI_API_KEY":           "generic",
		"DESIGNGEN_GEMINI_API_KEY": "specific",
	})

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, "specific", cfg.Gemini.APIKey)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	l := NewLoader().WithEnvPrefix("SHIRTS")
	l.lookupEnv = envMap(map[string]string{
		"SHIRTS_SERVER_ADDR":          ":9100",
		"SHIRTS_GENERATION_SIZE":      "2K",
		"DESIGNGEN_GENERATION_PROMPT": "ignored",
	})

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Server.Addr)
	assert.Equal(t, "2K", cfg.Generation.Size)
	assert.Equal(t, designgen.DefaultPrompt, cfg.InitialPrompt())
}

func TestLoader_ModelTuning(t *testing.T) {
	path := writeConfig(t, `
gemini:
  model: nano-banana
  safety_settings:
    - category: HARM_CATEGORY_HARASSMENT
      threshold: BLOCK_ONLY_HIGH
generation:
  size: 1K
  temperature: 0.4
`)

	l := NewLoader().WithConfigPath(path)
	l.lookupEnv = envMap(map[string]string{"DESIGNGEN_GENERATION_TEMPERATURE": "0.9"})

	cfg, err := l.Load()
	require.NoError(t, err)

	req := cfg.RequestConfig()
	assert.Equal(t, designgen.ImageSize1K, req.Size)
	require.NotNil(t, req.Temperature)
	assert.InDelta(t, 0.9, *req.Temperature, 1e-6, "env beats YAML")

	*req.Temperature = 1.5
	assert.InDelta(t, 0.9, *cfg.Generation.Temperature, 1e-6, "request config holds a copy")

	assert.Equal(t, []designgen.SafetySetting{{
		Category:  designgen.SafetyCategoryHarassment,
		Threshold: designgen.SafetyThresholdBlockHighAndUp,
	}}, cfg.SafetySettings())
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	l := NewLoader().WithConfigPath(filepath.Join(t.TempDir(), "absent.yaml"))
	l.lookupEnv = envMap(nil)

	cfg, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "bad yaml", yaml: "server: [unclosed"},
		{name: "bad backend", yaml: "export:\n  backend: ftp\n"},
		{name: "s3 without bucket", yaml: "export:\n  backend: s3\n"},
		{name: "bad aspect", yaml: "generation:\n  aspect_ratio: \"2:1\"\n"},
		{name: "bad mime", yaml: "generation:\n  output_mime_type: text/html\n"},
		{name: "bad log format", yaml: "log:\n  format: xml\n"},
		{name: "bad env duration", env: map[string]string{"DESIGNGEN_GENERATION_TIMEOUT": "soon"}},
		{name: "bad env bool", env: map[string]string{"DESIGNGEN_GENERATION_WAIT_ON_RATE_LIMIT": "maybe"}},
		{name: "bad size", yaml: "generation:\n  size: 4K\n"},
		{name: "temperature out of range", yaml: "generation:\n  temperature: 3\n"},
		{name: "bad env temperature", env: map[string]string{"DESIGNGEN_GENERATION_TEMPERATURE": "warm"}},
		{name: "bad log level", yaml: "log:\n  level: loud\n"},
		{name: "bad safety category", yaml: "gemini:\n  safety_settings:\n    - category: HARM_CATEGORY_RUDENESS\n      threshold: BLOCK_NONE\n"},
		{name: "bad safety threshold", yaml: "gemini:\n  safety_settings:\n    - category: HARM_CATEGORY_HARASSMENT\n      threshold: BLOCK_SOME\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader()
			if tt.yaml != "" {
				l.WithConfigPath(writeConfig(t, tt.yaml))
			}
			l.lookupEnv = envMap(tt.env)

			_, err := l.Load()
			assert.Error(t, err)
		})
	}
}

func TestConfig_ProviderConfig(t *testing.T) {
	cfg := Default()
	cfg.Gemini.APIKey = "key"
	assert.Equal(t, designgen.ProviderGeminiAPI, cfg.ProviderConfig().Provider)

	cfg.Gemini.Project = "my-project"
	pc := cfg.ProviderConfig()
	assert.Equal(t, designgen.ProviderVertexAI, pc.Provider)
	assert.Equal(t, "us-central1", pc.Location)
}
