package inject

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mhpenta/designgen"
	"github.com/mhpenta/designgen/config"
	"github.com/mhpenta/designgen/server"
	"github.com/mhpenta/designgen/storage/filestore"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct{}

func (stubGenerator) Generate(ctx context.Context, prompt string, cfg *designgen.GenerateConfig) (*designgen.GenerateResult, error) {
	return &designgen.GenerateResult{
		Images: []designgen.GeneratedImage{{Data: []byte{0xff, 0xd8, 0xff, 0xe0}, MIMEType: cfg.OutputMIMEType}},
	}, nil
}

func (stubGenerator) Models() []designgen.ModelInfo {
	return []designgen.ModelInfo{{
		Name:         string(designgen.ModelImagen4),
		Provider:     "stub",
		APIModelName: "stub-imagen",
	}}
}

func (stubGenerator) Close() error { return nil }

func newInjector(t *testing.T, cfg *config.Config) *do.Injector {
	t.Helper()
	injector := Setup(context.Background(), cfg)
	do.Override[designgen.ImageGenerator](injector, func(i *do.Injector) (designgen.ImageGenerator, error) {
		return stubGenerator{}, nil
	})
	t.Cleanup(func() { _ = injector.Shutdown() })
	return injector
}

func TestNewStorage(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()

	storage, err := do.Invoke[designgen.Storage](newInjector(t, cfg))
	require.NoError(t, err)
	assert.IsType(t, &filestore.Store{}, storage)

	cfg = config.Default()
	cfg.Export.Backend = "ftp"
	_, err = do.Invoke[designgen.Storage](newInjector(t, cfg))
	assert.ErrorContains(t, err, `unknown export backend "ftp"`)
}

func TestSetup_ControllerUsesManager(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()
	cfg.Generation.Prompt = "a fox in a spacesuit"

	injector := newInjector(t, cfg)
	ctrl, err := do.Invoke[*designgen.Controller](injector)
	require.NoError(t, err)
	defer ctrl.Close()

	assert.Equal(t, "a fox in a spacesuit", ctrl.Prompt())
	require.True(t, ctrl.Generate())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, ctrl.Wait(ctx))

	view := ctrl.Snapshot()
	require.False(t, view.HasError(), view.ErrorMessage)
	assert.Equal(t, "image/jpeg", view.ImageRef.MIMEType())

	storage := do.MustInvoke[designgen.Storage](injector)
	result, err := ctrl.Export(ctx, storage, cfg.Export.Name)
	require.NoError(t, err)
	assert.Equal(t, "tshirt-design.jpeg", result.Path)
}

func TestSetup_Server(t *testing.T) {
	cfg := config.Default()
	cfg.Export.Dir = t.TempDir()

	srv, err := do.Invoke[*server.Server](newInjector(t, cfg))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
