package worker_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/overlens/internal/adapters/worker"
	"go.trai.ch/overlens/internal/core/domain"
)

func TestDecodeRelations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []domain.OverrideRelation
	}{
		{
			name: "child override uses base fields",
			raw:  baseRelation,
			want: []domain.OverrideRelation{{
				OwningClass:   "Child",
				Method:        "run",
				Line:          4,
				Signature:     "run(self)",
				Kind:          domain.KindChildOverride,
				PeerClassName: "Base",
				PeerFilePath:  "/project/base.py",
				PeerLine:      2,
				PeerSignature: "run(self)",
			}},
		},
		{
			name: "parent overridden uses child fields and class_name",
			raw: `[{"class_name":"Base","method":"run","line":2,"type":"parent_overridden",` +
				`"child":"Child","child_file":"child.py","child_file_path":"/project/child.py","child_line":4}]`,
			want: []domain.OverrideRelation{{
				OwningClass:   "Base",
				Method:        "run",
				Line:          2,
				Kind:          domain.KindParentOverridden,
				PeerClassName: "Child",
				PeerFilePath:  "/project/child.py",
				PeerLine:      4,
			}},
		},
		{
			name: "relative peer file resolved against root",
			raw: `[{"class":"Child","method":"run","line":4,"type":"child_override",` +
				`"base":"Base","base_file":"pkg/base.py","base_line":2}]`,
			want: []domain.OverrideRelation{{
				OwningClass:   "Child",
				Method:        "run",
				Line:          4,
				Kind:          domain.KindChildOverride,
				PeerClassName: "Base",
				PeerFilePath:  "/project/pkg/base.py",
				PeerLine:      2,
			}},
		},
		{
			name: "items without peer path, with error or unknown type are dropped",
			raw: `[{"error":"Analysis failed: boom"},` +
				`{"class":"A","method":"m","line":1,"type":"child_override","base":"B","base_line":3},` +
				`{"class":"A","method":"m","line":1,"type":"sibling","base_file_path":"/x.py","base_line":3},` +
				`{"class":"A","method":"m","line":0,"type":"child_override","base_file_path":"/x.py","base_line":3},` +
				`"not an object"]`,
			want: []domain.OverrideRelation{},
		},
		{
			name: "null result",
			raw:  `null`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := worker.DecodeRelations([]byte(tt.raw), "/project")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRelations_NotAnArray(t *testing.T) {
	_, err := worker.DecodeRelations([]byte(`{"class":"A"}`), "/project")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrProtocolDecode.Error())
}
