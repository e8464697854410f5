package hclloader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/opcycle/internal/config"
)

func writeHCL(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()

	t.Run("full document", func(t *testing.T) {
		path := writeHCL(t, `
			opmode "lift" {
				flags      = ["teleop", "armed"]
				init_loops = 3
				main_loops = 25
			}

			controller "lift_height" {
				target         = 120.5
				auto_update    = false
				requires_flags = ["armed"]

				calculator "proportional" {
					gain = 0.8
				}
				calculator "integral" {
					gain  = 0.05
					lower = -1
					upper = 1
				}
				calculator "derivative" {
					gain = 0.2
				}
			}
		`)

		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)

		require.NotNil(t, model.OpMode)
		assert.Equal(t, "lift", model.OpMode.Name)
		assert.Equal(t, []string{"teleop", "armed"}, model.OpMode.Flags)
		assert.Equal(t, 3, model.OpMode.InitLoops)
		assert.Equal(t, 25, model.OpMode.MainLoops)

		require.Len(t, model.Controllers, 1)
		c := model.Controllers[0]
		assert.Equal(t, "lift_height", c.Name)
		assert.Equal(t, 120.5, c.Target)
		assert.False(t, c.AutoUpdate)
		assert.Equal(t, []string{"armed"}, c.RequiredFlags)

		require.Len(t, c.Calculators, 3)
		assert.Equal(t, "proportional", c.Calculators[0].Kind)
		assert.Equal(t, 0.8, c.Calculators[0].Gain)
		assert.Equal(t, "integral", c.Calculators[1].Kind)
		assert.Equal(t, -1.0, c.Calculators[1].Lower)
		assert.Equal(t, 1.0, c.Calculators[1].Upper)
		assert.Equal(t, "derivative", c.Calculators[2].Kind)
	})

	t.Run("defaults apply", func(t *testing.T) {
		path := writeHCL(t, `
			opmode "idle" {}

			controller "heading" {
				target = 90

				calculator "proportional" {
					gain = 1
				}
			}
		`)

		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)

		assert.Equal(t, 1, model.OpMode.InitLoops)
		assert.Equal(t, 1, model.OpMode.MainLoops)
		assert.True(t, model.Controllers[0].AutoUpdate)
		assert.Empty(t, model.Controllers[0].RequiredFlags)
	})

	t.Run("arithmetic expressions evaluate", func(t *testing.T) {
		path := writeHCL(t, `
			opmode "expr" {}

			controller "arm" {
				target = 45 * 2

				calculator "proportional" {
					gain = 1 / 4
				}
			}
		`)

		model, err := NewLoader().Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, 90.0, model.Controllers[0].Target)
		assert.Equal(t, 0.25, model.Controllers[0].Calculators[0].Gain)
	})

	t.Run("syntax error is reported", func(t *testing.T) {
		path := writeHCL(t, `opmode "broken" {`)

		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing")
	})

	t.Run("non-numeric target is rejected", func(t *testing.T) {
		path := writeHCL(t, `
			opmode "bad" {}

			controller "arm" {
				target = "high"
			}
		`)

		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target")
	})

	t.Run("missing opmode fails validation", func(t *testing.T) {
		path := writeHCL(t, `
			controller "arm" {
				target = 1
			}
		`)

		_, err := NewLoader().Load(ctx, path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing opmode")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewLoader().Load(ctx, filepath.Join(t.TempDir(), "absent.hcl"))
		require.Error(t, err)
	})
}

func TestLoader_ImplementsInterface(t *testing.T) {
	var _ config.Loader = NewLoader()
}
