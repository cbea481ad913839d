// Copyright © 2026 The flextools authors.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/linuxha/flextools/flex"
)

func testscriptMain() int {
	main()
	return 0
}

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"flexdump": testscriptMain,
	}))
}

func writeFixture(dir string) error {
	geom := flex.Geometry{Tracks: 10, SectorsPerTrack: 10}
	now := time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC)
	engine, err := flex.CreateImage(geom, "FIXTURE", 1, nil, now, flex.DefaultConfig())
	if err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "fixture.dsk"))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = engine.Flush(f)
	return err
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
		Setup: func(env *testscript.Env) error {
			return writeFixture(env.WorkDir)
		},
	})
}
