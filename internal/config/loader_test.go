package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wardsight/wardsight/internal/config"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no configuration sources", t, func() {
		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then defaults apply", func() {
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.Mode, ShouldEqual, config.ModeLive)
			So(cfg.TickIntervalMS, ShouldEqual, 2000)
			So(cfg.RedisAddr, ShouldBeEmpty)
			So(cfg.PersistWorkers, ShouldEqual, 4)
		})
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	Convey("Given environment overrides", t, func() {
		t.Setenv("WARDSIGHT_ADDR", ":7070")
		t.Setenv("WARDSIGHT_LOG_LEVEL", "debug")
		t.Setenv("WARDSIGHT_TICK_INTERVAL_MS", "500")
		t.Setenv("WARDSIGHT_REDIS_ADDR", "localhost:6379")

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then env values win over defaults", func() {
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.LogLevel, ShouldEqual, "debug")
			So(cfg.TickIntervalMS, ShouldEqual, 500)
			So(cfg.RedisAddr, ShouldEqual, "localhost:6379")
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a YAML config file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := `
addr: ":6060"
mode: replay
dataset_path: /data/summary.csv
target_patients: ["1", "2", "3"]
patient_names:
  "1": "Alex Chen"
`
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("WARDSIGHT_CONFIG", path)

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then file values load", func() {
			So(cfg.Addr, ShouldEqual, ":6060")
			So(cfg.Mode, ShouldEqual, config.ModeReplay)
			So(cfg.DatasetPath, ShouldEqual, "/data/summary.csv")
			So(cfg.TargetPatients, ShouldResemble, []string{"1", "2", "3"})
			So(cfg.PatientNames["1"], ShouldEqual, "Alex Chen")
		})

		Convey("And env still wins over the file", func() {
			t.Setenv("WARDSIGHT_ADDR", ":5050")
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":5050")
		})
	})
}

func TestLoadValidation(t *testing.T) {
	Convey("Given invalid configuration", t, func() {
		Convey("When the mode is unknown", func() {
			t.Setenv("WARDSIGHT_MODE", "batch")
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When replay mode lacks a dataset", func() {
			t.Setenv("WARDSIGHT_MODE", "replay")
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the config file is missing", func() {
			t.Setenv("WARDSIGHT_CONFIG", "/does/not/exist.yaml")
			_, err := config.Load(context.Background())
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
