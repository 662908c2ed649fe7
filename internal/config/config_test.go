package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/lookalike/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.IndexKind, convey.ShouldEqual, config.IndexForest)
			convey.So(cfg.IndexTrees, convey.ShouldEqual, 10)
			convey.So(cfg.IndexSeed, convey.ShouldEqual, 42)
			convey.So(cfg.BuildWorkers, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.MaxK, convey.ShouldEqual, 20)
			convey.So(cfg.DefaultK, convey.ShouldEqual, 5)
			convey.So(cfg.DefaultMaxAge, convey.ShouldEqual, 30)
			convey.So(cfg.DefaultMaxValue, convey.ShouldEqual, 7_500_000)
			convey.So(cfg.DefaultMaxWage, convey.ShouldEqual, 50_000)
			convey.So(cfg.DefaultLeagues, convey.ShouldHaveLength, 6)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the index kind is unknown", func() {
			cfg.IndexKind = "hnsw"

			convey.Convey("Then validation fails with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "index_kind")
			})
		})

		convey.Convey("When the default k exceeds max k", func() {
			cfg.DefaultK = 50

			convey.Convey("Then validation fails", func() {
				convey.So(cfg.Validate(), convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When max k is zero", func() {
			cfg.MaxK = 0
			cfg.DefaultK = 0

			convey.Convey("Then validation rejects it", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_k must be positive")
			})
		})

		convey.Convey("When several fields are wrong", func() {
			cfg.IndexTrees = 0
			cfg.BuildWorkers = 0
			cfg.DefaultLeagues = nil

			convey.Convey("Then every problem is reported", func() {
				err := cfg.Validate()
				convey.So(err.Error(), convey.ShouldContainSubstring, "index_trees")
				convey.So(err.Error(), convey.ShouldContainSubstring, "build_workers")
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_leagues")
			})
		})
	})
}
