package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/scribekit/scribe/internal/storage/dirstore"
)

const (
	conversationFile = "conversation.json"
	metaFile         = "meta.json"
)

// FileStore persists each conversation as a directory holding
// conversation.json (the durable unit, rewritten atomically on every
// append) and meta.json (a small header index so List stays cheap).
type FileStore struct {
	ds *dirstore.DirStore
}

// NewFileStore creates a FileStore rooted at baseDir.
func NewFileStore(baseDir string) *FileStore {
	return &FileStore{ds: dirstore.NewDirStore(baseDir, "conversation")}
}

func generateConversationID() string {
	u := uuid.New().String()
	return "conv_" + strings.ReplaceAll(u[:8], "-", "")
}

// Create allocates a new conversation ID and persists an empty header.
func (fs *FileStore) Create() (*Conversation, error) {
	fs.ds.Lock()
	defer fs.ds.Unlock()

	now := time.Now().UTC()
	conv := &Conversation{
		ID:        generateConversationID(),
		CreatedAt: now,
		UpdatedAt: now,
		Turns:     []Turn{},
	}

	if err := fs.ds.EnsureDir(conv.ID); err != nil {
		return nil, err
	}
	if err := fs.writeConversation(conv); err != nil {
		return nil, err
	}

	return conv, nil
}

// Load reconstructs a conversation (header + all turns) from storage.
func (fs *FileStore) Load(id string) (*Conversation, error) {
	fs.ds.RLock()
	defer fs.ds.RUnlock()

	return fs.readConversation(id)
}

// Append durably commits one turn. The write is atomic: a crash mid-commit
// leaves the previous state fully visible, never a truncated document.
func (fs *FileStore) Append(id string, turn Turn) error {
	fs.ds.Lock()
	defer fs.ds.Unlock()

	if err := turn.Validate(); err != nil {
		return fmt.Errorf("invalid turn: %w", err)
	}

	conv, err := fs.readConversation(id)
	if err != nil {
		return err
	}

	if want := len(conv.Turns) + 1; turn.TurnNumber != want {
		return fmt.Errorf("turn number %d out of sequence, want %d", turn.TurnNumber, want)
	}

	conv.Turns = append(conv.Turns, turn)
	conv.UpdatedAt = time.Now().UTC()

	return fs.writeConversation(conv)
}

// List enumerates known conversations, most recently updated first.
// Only meta.json files are read; turn bodies stay on disk.
func (fs *FileStore) List() ([]Meta, error) {
	fs.ds.RLock()
	defer fs.ds.RUnlock()

	ids, err := fs.ds.ListDirs()
	if err != nil {
		return nil, err
	}

	var metas []Meta
	for _, id := range ids {
		var m Meta
		if err := fs.ds.ReadJSON(id, metaFile, &m); err != nil {
			continue // skip directories without a readable header
		}
		metas = append(metas, m)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// Delete removes all persisted state for a conversation. Deleting an
// absent ID is not an error.
func (fs *FileStore) Delete(id string) error {
	fs.ds.Lock()
	defer fs.ds.Unlock()

	return fs.ds.RemoveDir(id)
}

// writeConversation writes the durable unit first, then refreshes the
// header index. meta.json is derived state; conversation.json is truth.
func (fs *FileStore) writeConversation(conv *Conversation) error {
	if err := fs.ds.WriteJSONAtomic(conv.ID, conversationFile, conv); err != nil {
		return err
	}
	meta := Meta{
		ID:        conv.ID,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		TurnCount: len(conv.Turns),
	}
	return fs.ds.WriteJSONAtomic(conv.ID, metaFile, meta)
}

func (fs *FileStore) readConversation(id string) (*Conversation, error) {
	data, err := os.ReadFile(fs.ds.FilePath(id, conversationFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read conversation: %w", err)
	}

	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}

	if conv.ID != id {
		return nil, fmt.Errorf("%w: %s: stored id %q does not match", ErrCorrupt, id, conv.ID)
	}
	if err := validateTurns(conv.Turns); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}

	return &conv, nil
}

var _ Store = (*FileStore)(nil)
