package loader

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"
)

func testFS(files map[string]string) FileSystem {
	m := fstest.MapFS{}
	for name, data := range files {
		m[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return m
}

func TestTOMLLoad(t *testing.T) {
	fsys := testFS(map[string]string{
		"config.toml": `
[commentOptions]
textWidth = 72
matcher = "generic"

[commentOptions.formatBehavior]
add = "tcq"
remove = "l"

[commentOptions.languageOverrides.python]
matcher = "docstring"
`,
	})

	cfg, err := NewTOMLLoaderWithFS(fsys, "config.toml").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	comment := cfg["commentOptions"].(map[string]any)
	if comment["textWidth"] != int64(72) {
		t.Errorf("textWidth = %v (%T)", comment["textWidth"], comment["textWidth"])
	}
	fb := comment["formatBehavior"].(map[string]any)
	if fb["add"] != "tcq" || fb["remove"] != "l" {
		t.Errorf("formatBehavior = %v", fb)
	}
	ov := comment["languageOverrides"].(map[string]any)["python"].(map[string]any)
	if ov["matcher"] != "docstring" {
		t.Errorf("python override = %v", ov)
	}
}

func TestTOMLMissingFileIsNotAnError(t *testing.T) {
	cfg, err := NewTOMLLoaderWithFS(testFS(nil), "absent.toml").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != nil {
		t.Errorf("cfg = %v, want nil", cfg)
	}
}

func TestTOMLParseError(t *testing.T) {
	fsys := testFS(map[string]string{"bad.toml": "not [valid toml"})

	_, err := NewTOMLLoaderWithFS(fsys, "bad.toml").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if perr.Path != "bad.toml" {
		t.Errorf("ParseError.Path = %q", perr.Path)
	}
}

func TestYAMLLoad(t *testing.T) {
	fsys := testFS(map[string]string{
		"config.yaml": `
commentOptions:
  textWidth: 80
  formatBehavior:
    add: tc
globalOptions:
  languageOverrides:
    markdown:
      textWidth: 100
`,
	})

	cfg, err := NewYAMLLoaderWithFS(fsys, "config.yaml").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	comment := cfg["commentOptions"].(map[string]any)
	if comment["textWidth"] != 80 {
		t.Errorf("textWidth = %v (%T)", comment["textWidth"], comment["textWidth"])
	}
	md := cfg["globalOptions"].(map[string]any)["languageOverrides"].(map[string]any)["markdown"].(map[string]any)
	if md["textWidth"] != 100 {
		t.Errorf("markdown override = %v", md)
	}
}

func TestLuaLoad(t *testing.T) {
	fsys := testFS(map[string]string{
		"config.lua": `
return {
    keyBindings = { toggleParagraphWrap = "<leader>ww" },
    commentOptions = {
        textWidth = 72,
        formatBehavior = { add = "tcq", remove = "l" },
        languageOverrides = {
            python = { matcher = "docstring" },
        },
    },
}
`,
	})

	cfg, err := NewLuaLoaderWithFS(fsys, "config.lua").Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	keys := cfg["keyBindings"].(map[string]any)
	if keys["toggleParagraphWrap"] != "<leader>ww" {
		t.Errorf("toggleParagraphWrap = %v", keys["toggleParagraphWrap"])
	}
	comment := cfg["commentOptions"].(map[string]any)
	if comment["textWidth"] != int64(72) {
		t.Errorf("textWidth = %v (%T)", comment["textWidth"], comment["textWidth"])
	}
	fb := comment["formatBehavior"].(map[string]any)
	if fb["add"] != "tcq" {
		t.Errorf("formatBehavior = %v", fb)
	}
}

func TestLuaMustReturnTable(t *testing.T) {
	fsys := testFS(map[string]string{"config.lua": `return 42`})

	_, err := NewLuaLoaderWithFS(fsys, "config.lua").Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
}

func TestLoadDispatchesByExtension(t *testing.T) {
	fsys := testFS(map[string]string{
		"a.toml": "[commentOptions]\ntextWidth = 1",
		"b.yml":  "commentOptions:\n  textWidth: 2",
		"c.lua":  "return { commentOptions = { textWidth = 3 } }",
	})

	for _, tt := range []struct {
		path string
		want any
	}{
		{"a.toml", int64(1)},
		{"b.yml", 2},
		{"c.lua", int64(3)},
	} {
		cfg, err := LoadFS(fsys, tt.path)
		if err != nil {
			t.Fatalf("LoadFS(%s): %v", tt.path, err)
		}
		got := cfg["commentOptions"].(map[string]any)["textWidth"]
		if got != tt.want {
			t.Errorf("%s textWidth = %v, want %v", tt.path, got, tt.want)
		}
	}

	if _, err := LoadFS(fsys, "d.json"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestEnvLoader(t *testing.T) {
	t.Setenv("COMMENTWRAP_TEXT_WIDTH", "66")
	t.Setenv("COMMENTWRAP_MATCHER", "docstring")
	t.Setenv("COMMENTWRAP_FORMAT_ADD", "tw")

	cfg, err := NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want := map[string]any{
		"commentOptions": map[string]any{
			"textWidth": 66,
			"matcher":   "docstring",
			"formatBehavior": map[string]any{
				"add": "tw",
			},
		},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("cfg = %v, want %v", cfg, want)
	}
}

func TestLoadLayersEnvOverFile(t *testing.T) {
	t.Setenv("COMMENTWRAP_TEXT_WIDTH", "60")

	fsys := testFS(map[string]string{
		"config.toml": "[commentOptions]\ntextWidth = 90\nmatcher = \"generic\"",
	})

	cfg, err := LoadFS(fsys, "config.toml")
	if err != nil {
		t.Fatalf("LoadFS: %v", err)
	}

	comment := cfg["commentOptions"].(map[string]any)
	if comment["textWidth"] != 60 {
		t.Errorf("textWidth = %v, want env override 60", comment["textWidth"])
	}
	if comment["matcher"] != "generic" {
		t.Errorf("matcher = %v, want file value kept", comment["matcher"])
	}
}
