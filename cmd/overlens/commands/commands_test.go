package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/overlens/cmd/overlens/commands"
	"go.trai.ch/overlens/internal/app"
	"go.trai.ch/overlens/internal/build"
	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/overlens/internal/core/ports"
	"go.trai.ch/overlens/internal/engine/analyzer"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type mockApp struct {
	verbose, jsonLogs bool

	resolveFunc func(ctx context.Context, opts app.ResolveOptions) ([]app.Result, error)
	peersFunc   func(ctx context.Context, root, file string, line int) ([]domain.Location, error)
	clearFunc   func(ctx context.Context, root, file string) ([]string, error)
	statusFunc  func(ctx context.Context, root string, probe bool) (*app.StatusReport, error)
	watchFunc   func(ctx context.Context, opts app.WatchOptions) error
}

func (m *mockApp) ConfigureLogging(verbose, jsonLogs bool) {
	m.verbose = verbose
	m.jsonLogs = jsonLogs
}

func (m *mockApp) Resolve(ctx context.Context, opts app.ResolveOptions) ([]app.Result, error) {
	return m.resolveFunc(ctx, opts)
}

func (m *mockApp) Peers(ctx context.Context, root, file string, line int) ([]domain.Location, error) {
	return m.peersFunc(ctx, root, file, line)
}

func (m *mockApp) Clear(ctx context.Context, root, file string) ([]string, error) {
	return m.clearFunc(ctx, root, file)
}

func (m *mockApp) Status(ctx context.Context, root string, probe bool) (*app.StatusReport, error) {
	return m.statusFunc(ctx, root, probe)
}

func (m *mockApp) Watch(ctx context.Context, opts app.WatchOptions) error {
	return m.watchFunc(ctx, opts)
}

func execute(t *testing.T, m *mockApp, args ...string) (string, error) {
	t.Helper()
	cli := commands.New(m)
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return out.String(), err
}

var childRelation = domain.OverrideRelation{
	OwningClass:   "Child",
	Method:        "run",
	Line:          12,
	Kind:          domain.KindChildOverride,
	PeerClassName: "Base",
	PeerFilePath:  "/project/base.py",
	PeerLine:      3,
}

func TestCommands_Resolve(t *testing.T) {
	t.Run("wires flags and renders relations", func(t *testing.T) {
		var captured app.ResolveOptions
		m := &mockApp{
			resolveFunc: func(_ context.Context, opts app.ResolveOptions) ([]app.Result, error) {
				captured = opts
				return []app.Result{
					{File: "/project/child.py", Relations: []domain.OverrideRelation{childRelation}},
					{File: "/project/base.py", Relations: []domain.OverrideRelation{}},
				}, nil
			},
		}

		out, err := execute(t, m, "resolve", "--root", "/project", "-v", "child.py", "base.py")
		require.NoError(t, err)

		assert.Equal(t, app.ResolveOptions{Root: "/project", Paths: []string{"child.py", "base.py"}}, captured)
		assert.True(t, m.verbose)
		assert.False(t, m.jsonLogs)
		assert.Contains(t, out, "/project/child.py\n")
		assert.Contains(t, out, "    12 ↑ Child.run overrides Base.run (base.py:3)\n")
		assert.Contains(t, out, "  no override relations\n")
	})

	t.Run("writes json", func(t *testing.T) {
		m := &mockApp{
			resolveFunc: func(context.Context, app.ResolveOptions) ([]app.Result, error) {
				return []app.Result{{File: "/project/child.py", Relations: []domain.OverrideRelation{childRelation}}}, nil
			},
		}

		out, err := execute(t, m, "resolve", "--json", "--json-logs", "child.py")
		require.NoError(t, err)
		assert.True(t, m.jsonLogs)

		var got []app.Result
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, []app.Result{{File: "/project/child.py", Relations: []domain.OverrideRelation{childRelation}}}, got)
	})

	t.Run("shows usage when no files provided", func(t *testing.T) {
		m := &mockApp{
			resolveFunc: func(context.Context, app.ResolveOptions) ([]app.Result, error) {
				panic("should not be called")
			},
		}

		out, err := execute(t, m, "resolve")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})

	t.Run("returns error on failure", func(t *testing.T) {
		m := &mockApp{
			resolveFunc: func(context.Context, app.ResolveOptions) ([]app.Result, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, m, "resolve", "a.py")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_Peers(t *testing.T) {
	t.Run("prints locations", func(t *testing.T) {
		m := &mockApp{
			peersFunc: func(_ context.Context, root, file string, line int) ([]domain.Location, error) {
				assert.Equal(t, ".", root)
				assert.Equal(t, "child.py", file)
				assert.Equal(t, 12, line)
				return []domain.Location{{FilePath: "/project/base.py", Line: 3}}, nil
			},
		}

		out, err := execute(t, m, "peers", "child.py", "12")
		require.NoError(t, err)
		assert.Equal(t, "/project/base.py:3\n", out)
	})

	t.Run("empty json is an array", func(t *testing.T) {
		m := &mockApp{
			peersFunc: func(context.Context, string, string, int) ([]domain.Location, error) {
				return nil, nil
			},
		}

		out, err := execute(t, m, "peers", "--json", "child.py", "1")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	for _, arg := range []string{"0", "-3", "twelve"} {
		t.Run("rejects line "+arg, func(t *testing.T) {
			m := &mockApp{
				peersFunc: func(context.Context, string, string, int) ([]domain.Location, error) {
					panic("should not be called")
				},
			}

			_, err := execute(t, m, "peers", "child.py", "--", arg)
			assert.ErrorIs(t, err, domain.ErrInvalidLine)
		})
	}
}

func TestCommands_Clear(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		m := &mockApp{
			clearFunc: func(_ context.Context, _, file string) ([]string, error) {
				assert.Equal(t, "base.py", file)
				return []string{"/project/base.py", "/project/child.py"}, nil
			},
		}

		out, err := execute(t, m, "clear", "base.py")
		require.NoError(t, err)
		assert.Equal(t, "Evicted 2 file(s)\n  /project/base.py\n  /project/child.py\n", out)
	})

	t.Run("everything", func(t *testing.T) {
		m := &mockApp{
			clearFunc: func(_ context.Context, _, file string) ([]string, error) {
				assert.Empty(t, file)
				return nil, nil
			},
		}

		out, err := execute(t, m, "clear")
		require.NoError(t, err)
		assert.Equal(t, "Cleared the index\n", out)
	})
}

func TestCommands_Status(t *testing.T) {
	report := &app.StatusReport{
		Root:         "/project",
		Command:      []string{"python3", "analyze_override.py"},
		SnapshotPath: "/project/.overlens/index.json",
		Status: analyzer.Status{
			Worker: ports.WorkerStatus{Running: true, Ready: true, PID: 42},
			Index:  domain.IndexStats{Files: 3, Relations: 5, Dependencies: 2},
		},
	}

	t.Run("text", func(t *testing.T) {
		var probed bool
		m := &mockApp{
			statusFunc: func(_ context.Context, _ string, probe bool) (*app.StatusReport, error) {
				probed = probe
				return report, nil
			},
		}

		out, err := execute(t, m, "status", "--probe")
		require.NoError(t, err)
		assert.True(t, probed)
		assert.Contains(t, out, "Worker:       python3 analyze_override.py\n")
		assert.Contains(t, out, "State:        ready (pid 42)\n")
		assert.Contains(t, out, "Files:        3\n")
		assert.Contains(t, out, "Last scan:    never\n")
	})

	t.Run("json", func(t *testing.T) {
		m := &mockApp{
			statusFunc: func(context.Context, string, bool) (*app.StatusReport, error) {
				return report, nil
			},
		}

		out, err := execute(t, m, "status", "--json")
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "/project", got["root"])
		status := got["status"].(map[string]any)
		assert.Equal(t, float64(42), status["worker"].(map[string]any)["pid"])
		assert.Equal(t, float64(3), status["index"].(map[string]any)["files"])
	})
}

func TestCommands_Watch(t *testing.T) {
	m := &mockApp{
		watchFunc: func(_ context.Context, opts app.WatchOptions) error {
			assert.True(t, opts.Scan)
			assert.Equal(t, ":9464", opts.MetricsAddr)
			opts.OnResolved(app.Result{File: "/project/child.py", Relations: []domain.OverrideRelation{childRelation}})
			return nil
		},
	}

	out, err := execute(t, m, "watch", "--scan", "--metrics-addr", ":9464")
	require.NoError(t, err)
	assert.Contains(t, out, "Child.run overrides Base.run")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "overlens version "+build.Version+" (commit: "+build.Commit+", date: "+build.Date+")\n", out)
}
