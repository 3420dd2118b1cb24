package docker

import (
	"testing"

	"github.com/sakif/snippetshare/internal/model"
)

func TestSpecs_CoverOnlyRunnableLanguages(t *testing.T) {
	runnable := []model.Language{
		model.LangPython, model.LangJavaScript, model.LangTypeScript, model.LangPHP,
	}
	for _, lang := range runnable {
		if _, ok := specs[lang]; !ok {
			t.Errorf("no spec for runnable language %s", lang)
		}
	}

	// Markup and compile-step languages must not pretend to be runnable.
	for _, lang := range []model.Language{
		model.LangHTML, model.LangCSS, model.LangJava, model.LangCSharp,
	} {
		if _, ok := specs[lang]; ok {
			t.Errorf("unexpected spec for %s", lang)
		}
	}
}

func TestSpecs_CmdCarriesCode(t *testing.T) {
	const code = `print("hello")`

	for lang, spec := range specs {
		argv := spec.Cmd(code)
		if len(argv) < 2 {
			t.Errorf("%s: argv too short: %v", lang, argv)
			continue
		}
		found := false
		for _, arg := range argv {
			if arg == code {
				found = true
			}
		}
		if !found {
			t.Errorf("%s: code not passed through argv %v", lang, argv)
		}
	}
}

func TestDefaultConfig_PoolsAreRunnable(t *testing.T) {
	cfg := DefaultConfig()
	for _, lang := range cfg.PoolLanguages {
		if _, ok := specs[lang]; !ok {
			t.Errorf("default pool language %s has no spec", lang)
		}
	}
	if cfg.Timeout <= 0 {
		t.Error("default timeout must be positive")
	}
}
