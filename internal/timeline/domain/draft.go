package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrInvalidDraftKey = errors.New("draft key needs a location and a session")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrVersionMismatch = errors.New("draft version mismatch")
)

// DraftKey addresses the block list one editing session works on.
type DraftKey struct {
	LocationID string
	SessionID  string
}

func (k DraftKey) Validate() error {
	if strings.TrimSpace(k.LocationID) == "" || strings.TrimSpace(k.SessionID) == "" ||
		strings.Contains(k.LocationID, ":") || strings.Contains(k.SessionID, ":") {
		return ErrInvalidDraftKey
	}
	return nil
}

func (k DraftKey) String() string {
	return k.LocationID + ":" + k.SessionID
}

// Draft is the current block list of a session. Version grows by one with
// every Save, Undo and Clear, so a version number is never reused for a
// stored key.
type Draft struct {
	Blocks    []AssignmentBlock `json:"blocks"`
	Version   int               `json:"version"`
	UpdatedAt time.Time         `json:"updated_at"`
	// UndoDepth is how many earlier versions are kept.
	UndoDepth int `json:"undo_depth"`
}

// DraftStore keeps session drafts with a bounded undo history. Load of an
// unknown key returns an empty draft, not an error.
type DraftStore interface {
	Load(ctx context.Context, key DraftKey) (Draft, error)
	// Save replaces the draft and pushes the previous one onto the history.
	// A positive expectedVersion must equal the stored version at the time
	// of the write, otherwise Save returns ErrVersionMismatch.
	Save(ctx context.Context, key DraftKey, blocks []AssignmentBlock, expectedVersion int) (Draft, error)
	// Undo restores the blocks of the previous entry under a new version or
	// returns ErrNothingToUndo.
	Undo(ctx context.Context, key DraftKey) (Draft, error)
	// Clear empties the draft and drops its history.
	Clear(ctx context.Context, key DraftKey) error
}
