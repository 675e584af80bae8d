package resolver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TurnRole labels who produced a conversation turn.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one immutable entry of the conversation history.
type Turn struct {
	Role      TurnRole
	Content   string
	Sequence  int
	CreatedAt time.Time
}

// PendingEnrichment is the saved intent to ask the user one clarifying
// question (currently a birth date) before attempting an external lookup.
// At most one exists per conversation; it is consumed by the very next turn.
type PendingEnrichment struct {
	SubjectName string
	RequestedAt time.Time
}

// Conversation owns the mutable per-conversation state: the append-only turn
// history and the optional pending enrichment. The orchestrator is the only
// writer; the accessors are safe for concurrent reads from other domains
// (e.g. the suggestion fetcher runs alongside the turn pipeline).
type Conversation struct {
	mu      sync.Mutex
	id      string
	turns   []Turn
	seq     int
	pending *PendingEnrichment
}

// NewConversation creates an empty conversation with a fresh id.
func NewConversation() *Conversation {
	return &Conversation{id: uuid.NewString()}
}

// ID returns the conversation's stable identifier.
func (c *Conversation) ID() string { return c.id }

// AppendTurn appends one turn and returns it with its assigned sequence.
// Appends never reorder or drop entries.
func (c *Conversation) AppendTurn(role TurnRole, content string) Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	t := Turn{Role: role, Content: content, Sequence: c.seq, CreatedAt: time.Now()}
	c.turns = append(c.turns, t)
	return t
}

// History returns a copy of the turn history in arrival order.
func (c *Conversation) History() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// PendingEnrichment returns the current pending enrichment without clearing
// it, or nil when none is staged.
func (c *Conversation) PendingEnrichment() *PendingEnrichment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	p := *c.pending
	return &p
}

// SetPendingEnrichment overwrites the pending enrichment, last write wins.
// Passing nil clears it.
func (c *Conversation) SetPendingEnrichment(p *PendingEnrichment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p == nil {
		c.pending = nil
		return
	}
	cp := *p
	c.pending = &cp
}

// ConsumePendingEnrichment atomically reads and clears the pending
// enrichment. When none is staged it returns nil and is a no-op.
func (c *Conversation) ConsumePendingEnrichment() *PendingEnrichment {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := c.pending
	c.pending = nil
	return p
}

// Reset clears history and pending enrichment together, for an explicit new
// session. The conversation keeps its id.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.seq = 0
	c.pending = nil
}
