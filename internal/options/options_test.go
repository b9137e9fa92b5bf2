package options

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type fitterConfig struct {
	workers int
	method  string
	applied []string
}

func TestOptionNew(t *testing.T) {
	t.Run("applies and validates", func(t *testing.T) {
		cfg := &fitterConfig{}
		opt := New(func(c *fitterConfig) error {
			if c.workers != 0 {
				return errors.New("workers already set")
			}
			c.workers = 4

			return nil
		})

		require.NoError(t, opt.apply(cfg))
		require.Equal(t, 4, cfg.workers)
	})

	t.Run("propagates validation errors", func(t *testing.T) {
		cfg := &fitterConfig{}
		opt := New(func(c *fitterConfig) error {
			return errors.New("invalid setting")
		})

		require.ErrorContains(t, opt.apply(cfg), "invalid setting")
	})
}

func TestOptionNoError(t *testing.T) {
	cfg := &fitterConfig{}
	opt := NoError(func(c *fitterConfig) {
		c.method = "bilinear"
	})

	require.NoError(t, opt.apply(cfg))
	require.Equal(t, "bilinear", cfg.method)
}

func TestApply(t *testing.T) {
	t.Run("runs options in order", func(t *testing.T) {
		cfg := &fitterConfig{}
		record := func(name string) Option[*fitterConfig] {
			return NoError(func(c *fitterConfig) {
				c.applied = append(c.applied, name)
			})
		}

		require.NoError(t, Apply(cfg, record("first"), record("second"), record("third")))
		require.Equal(t, []string{"first", "second", "third"}, cfg.applied)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &fitterConfig{}
		failing := New(func(c *fitterConfig) error {
			return errors.New("boom")
		})
		after := NoError(func(c *fitterConfig) {
			c.applied = append(c.applied, "after")
		})

		require.Error(t, Apply(cfg, failing, after))
		require.Empty(t, cfg.applied)
	})

	t.Run("no options is a no-op", func(t *testing.T) {
		cfg := &fitterConfig{}
		require.NoError(t, Apply(cfg))
	})
}
