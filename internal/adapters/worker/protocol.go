package worker

import (
	"bytes"
	"cmp"
	"encoding/json"
	"path/filepath"

	"go.trai.ch/overlens/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	serverFlag     = "--server"
	readyType      = "ready"
	analyzeCommand = "analyze"
)

type request struct {
	ID      string      `json:"id"`
	Command string      `json:"command"`
	Data    requestData `json:"data"`
}

type requestData struct {
	FilePath string `json:"file_path"`
}

// message is any line the worker writes: the readiness signal or a response.
type message struct {
	Type   string          `json:"type,omitempty"`
	ID     string          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  json.RawMessage `json:"error,omitempty"`
}

func encodeRequest(id, filePath string) ([]byte, error) {
	line, err := json.Marshal(request{
		ID:      id,
		Command: analyzeCommand,
		Data:    requestData{FilePath: filePath},
	})
	if err != nil {
		return nil, err
	}
	return append(line, '\n'), nil
}

func decodeMessage(line []byte) (message, error) {
	var msg message
	if err := json.Unmarshal(line, &msg); err != nil {
		return message{}, zerr.Wrap(err, domain.ErrProtocolDecode.Error())
	}
	return msg, nil
}

// failure returns the worker-reported error text, or "" for a successful response.
func (m message) failure() string {
	raw := bytes.TrimSpace(m.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if text == "" {
			return "unknown error"
		}
		return text
	}
	return string(raw)
}

// wireRelation is one relation object as the worker emits it.
type wireRelation struct {
	Class     string `json:"class"`
	ClassName string `json:"class_name"`
	Method    string `json:"method"`
	Line      int    `json:"line"`
	Signature string `json:"signature"`
	Type      string `json:"type"`

	Base          string `json:"base"`
	BaseFile      string `json:"base_file"`
	BaseFilePath  string `json:"base_file_path"`
	BaseLine      int    `json:"base_line"`
	BaseSignature string `json:"base_signature"`

	Child          string `json:"child"`
	ChildFile      string `json:"child_file"`
	ChildFilePath  string `json:"child_file_path"`
	ChildLine      int    `json:"child_line"`
	ChildSignature string `json:"child_signature"`

	Error string `json:"error"`
}

// DecodeRelations normalizes a worker result array into relations.
// Relative peer paths are resolved against root. Items that carry an error,
// have an unknown type, or lack a peer location are dropped.
func DecodeRelations(raw []byte, root string) ([]domain.OverrideRelation, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, zerr.Wrap(err, domain.ErrProtocolDecode.Error())
	}

	relations := make([]domain.OverrideRelation, 0, len(items))
	for _, item := range items {
		var w wireRelation
		if err := json.Unmarshal(item, &w); err != nil {
			continue
		}
		if rel, ok := w.normalize(root); ok {
			relations = append(relations, rel)
		}
	}
	return relations, nil
}

func (w *wireRelation) normalize(root string) (domain.OverrideRelation, bool) {
	if w.Error != "" || w.Method == "" || w.Line < 1 {
		return domain.OverrideRelation{}, false
	}

	rel := domain.OverrideRelation{
		OwningClass: cmp.Or(w.Class, w.ClassName),
		Method:      w.Method,
		Line:        w.Line,
		Signature:   w.Signature,
		Kind:        domain.RelationKind(w.Type),
	}

	switch rel.Kind {
	case domain.KindChildOverride:
		rel.PeerClassName = w.Base
		rel.PeerFilePath = cmp.Or(w.BaseFilePath, w.BaseFile)
		rel.PeerLine = w.BaseLine
		rel.PeerSignature = w.BaseSignature
	case domain.KindParentOverridden:
		rel.PeerClassName = w.Child
		rel.PeerFilePath = cmp.Or(w.ChildFilePath, w.ChildFile)
		rel.PeerLine = w.ChildLine
		rel.PeerSignature = w.ChildSignature
	default:
		return domain.OverrideRelation{}, false
	}

	if rel.PeerFilePath == "" || rel.PeerLine < 1 {
		return domain.OverrideRelation{}, false
	}
	if !filepath.IsAbs(rel.PeerFilePath) && root != "" {
		rel.PeerFilePath = filepath.Join(root, rel.PeerFilePath)
	}
	rel.PeerFilePath = filepath.Clean(rel.PeerFilePath)
	return rel, true
}
