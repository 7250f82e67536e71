package model_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/xformgo/internal/ctxlog"
	"github.com/specialistvlad/xformgo/internal/model"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, src string) *model.Program {
	t.Helper()
	p, diags := model.ParseProgramSource([]byte(src), "main.hcl")
	require.False(t, diags.HasErrors(), diags.Error())
	return p
}

func kinds(els []*model.Element) []model.Kind {
	out := make([]model.Kind, 0, len(els))
	for _, el := range els {
		out = append(out, el.Kind)
	}
	return out
}

func TestParseProgramSource_KeepsChildOrder(t *testing.T) {
	p := parse(t, `
template "main" {
  iterate {
    select = input.items
    param "p" { select = 1 }
    on_completion { select = p }
    value { select = item }
    if {
      test = p > 2
      break {}
    }
    next_iteration {
      with_param "p" { select = p + 1 }
    }
  }
}
`)
	require.Len(t, p.Templates, 1)
	tpl := p.Templates[0]
	require.Equal(t, model.KindTemplate, tpl.Kind)
	require.Equal(t, "main", tpl.Label)
	require.Len(t, tpl.Children, 1)

	it := tpl.Children[0]
	require.Equal(t, model.KindIterate, it.Kind)
	require.NotNil(t, it.Attr("select"))
	require.Equal(t, []model.Kind{
		model.KindParam, model.KindOnCompletion, model.KindValue, model.KindIf, model.KindNextIteration,
	}, kinds(it.Children))

	param := it.Children[0]
	require.Equal(t, "p", param.Label)
	require.Equal(t, []string{"p"}, it.Children[4].Children[0].Expressions.RootNames())
	require.Equal(t, "main.hcl", param.FSInformation.FilePath)
	require.Equal(t, 5, param.DefRange.Start.Line)

	// Out-of-order children are kept as written; ordering is checked later.
	p = parse(t, `
template "main" {
  iterate {
    select = []
    value { select = 1 }
    param "late" {}
  }
}
`)
	require.Equal(t, []model.Kind{model.KindValue, model.KindParam}, kinds(p.Templates[0].Children[0].Children))
}

func TestParseProgramSource_Declarations(t *testing.T) {
	p := parse(t, `
namespace "acme" { uri = "urn:acme" }

extension "acme" {
  script {
    lang   = "hcl"
    source = <<-EOT
      function "shout" {
        params = [s]
        result = upper(s)
      }
    EOT
  }
}

template "main" {}
`)
	require.Len(t, p.Namespaces, 1)
	require.Equal(t, "acme", p.Namespaces[0].Prefix)
	require.Equal(t, "urn:acme", p.Namespaces[0].URI)

	require.Len(t, p.Extensions, 1)
	ext := p.Extensions[0]
	require.Equal(t, "acme", ext.Prefix)
	require.Equal(t, "hcl", ext.Script.Lang)
	require.Contains(t, ext.Script.Source, `function "shout"`)
}

func TestParseProgramSource_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		src         string
		errContains string
	}{
		{
			name:        "unknown block in iterate",
			src:         `template "main" {
  iterate {
    frobnicate {}
  }
}`,
			errContains: "Unsupported block type",
		},
		{
			name:        "value without select",
			src:         `template "main" {
  value {}
}`,
			errContains: "Missing required argument",
		},
		{
			name:        "next_iteration outside iterate",
			src:         `template "main" {
  next_iteration {}
}`,
			errContains: "Unsupported block type",
		},
		{
			name:        "param without name",
			src:         `template "main" {
  iterate {
    param {}
  }
}`,
			errContains: "Missing name for param",
		},
		{
			name:        "two otherwise branches",
			src:         `template "main" {
  choose {
    otherwise {}
    otherwise {}
  }
}`,
			errContains: `Duplicate "otherwise" block`,
		},
		{
			name: "extension without script",
			src: `
extension "acme" {}
`,
			errContains: "Missing script block",
		},
		{
			name: "extension with both sources",
			src: `
extension "acme" {
  script {
    src    = "a.hcl"
    source = ""
  }
}
`,
			errContains: "", // an empty inline source does not conflict
		},
		{
			name: "extension with two non-empty sources",
			src: `
extension "acme" {
  script {
    src    = "a.hcl"
    source = "x"
  }
}
`,
			errContains: "Conflicting script sources",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := model.ParseProgramSource([]byte(tc.src), "main.hcl")
			if tc.errContains == "" {
				require.False(t, diags.HasErrors(), diags.Error())
				return
			}
			require.True(t, diags.HasErrors())
			require.Contains(t, diags.Error(), tc.errContains)
		})
	}
}

func TestLoadProgram_MergesDirectory(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.hcl":        "template \"main\" {\n  call_template \"helper\" {}\n}\n",
		"lib/helpers.hcl": "template \"helper\" {\n  value { select = 1 }\n}\n",
		"lib/ns.hcl":      `namespace "x" { uri = "urn:x" }`,
		"lib/readme.md":   `not a program`,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	ctx := ctxlog.Discard(context.Background())
	p, err := model.LoadProgram(ctx, dir)
	require.NoError(t, err)
	require.Len(t, p.Files, 3)
	require.Len(t, p.Templates, 2)
	require.Len(t, p.Namespaces, 1)

	_, err = model.LoadProgram(ctx, filepath.Join(dir, "missing"))
	require.ErrorContains(t, err, "program path not found")

	_, err = model.LoadProgram(ctx, filepath.Join(dir, "lib", "readme.md"))
	require.ErrorContains(t, err, "not an .hcl file")
}

func TestLoadProgram_SkipsExtensionScripts(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"main.hcl": `
namespace "m" { uri = "urn:money" }

extension "m" {
  script { src = "lib/money.hcl" }
}

template "main" {
  value { select = m::cents(1) }
}
`,
		"lib/money.hcl": `
function "cents" {
  params = [amount]
  result = floor(amount * 100)
}
`,
		"lib/helpers.hcl": "template \"helper\" {\n  value { select = 1 }\n}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	p, err := model.LoadProgram(ctxlog.Discard(context.Background()), dir)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "lib", "helpers.hcl"),
		filepath.Join(dir, "main.hcl"),
	}, p.Files)
	require.Len(t, p.Templates, 2)
	require.Len(t, p.Extensions, 1)
}

func TestLoadProgram_ReportsFileInErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`template "main" {`), 0644))

	_, err := model.LoadProgram(ctxlog.Discard(context.Background()), path)
	require.ErrorContains(t, err, "broken.hcl")
}

func TestSplitQName(t *testing.T) {
	testCases := []struct {
		in            string
		prefix, local string
		wantErr       bool
	}{
		{in: "total", local: "total"},
		{in: "acme:total", prefix: "acme", local: "total"},
		{in: "acme:", wantErr: true},
		{in: ":x", wantErr: true},
		{in: "1abc", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			prefix, local, err := model.SplitQName(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.prefix, prefix)
			require.Equal(t, tc.local, local)
		})
	}
}

func TestQName_Equality(t *testing.T) {
	a := model.QName{Space: "urn:acme", Local: "total"}
	b := model.QName{Space: "urn:acme", Local: "total"}
	require.Equal(t, a, b)
	require.True(t, a == b)
	require.NotEqual(t, a, model.LocalName("total"))
	require.Equal(t, "{urn:acme}total", a.String())
	require.Equal(t, "total", model.LocalName("total").String())
}
