package worker_test

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"go.trai.ch/overlens/internal/adapters/worker"
	"go.trai.ch/overlens/internal/core/domain"
	"go.uber.org/mock/gomock"
)

// TestHelperProcess is not a real test. It acts as the analysis worker when
// the test binary is re-executed by TestExecSpawner_EndToEnd.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	defer os.Exit(0)

	args := os.Args
	if len(args) < 2 || args[len(args)-2] != "--server" {
		fmt.Fprintln(os.Stderr, "missing --server flag")
		os.Exit(2)
	}

	fmt.Fprintln(os.Stderr, "helper worker booting")
	fmt.Println(`{"type":"ready"}`)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		var req wireRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		if req.Data.FilePath == "crash" {
			os.Exit(3)
		}
		fmt.Printf(`{"id":%q,"result":%s}`+"\n", req.ID, baseRelation)
	}
}

func TestExecSpawner_EndToEnd(t *testing.T) {
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	ctrl := gomock.NewController(t)
	cfg := &domain.Config{
		Root: t.TempDir(),
		Worker: domain.WorkerConfig{
			Command: []string{os.Args[0], "-test.run=^TestHelperProcess$", "--"},
			Timeout: domain.DefaultAnalyzeTimeout,
		},
	}
	link := worker.New(cfg, quietLogger(ctrl))
	t.Cleanup(func() { _ = link.Stop() })

	rels, err := link.Analyze(t.Context(), "/project/child.py")
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, "Base", rels[0].PeerClassName)

	_, err = link.Analyze(t.Context(), "crash")
	require.ErrorIs(t, err, domain.ErrWorkerTerminated)
	require.False(t, link.Status().Running)
}
