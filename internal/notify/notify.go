package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/nftmesh/nftmesh-go/internal/core/domain"
)

// Event is the wire form of a ledger event, as served by the events API.
// Transfer and approval events carry TokenID; operator toggles carry
// Owner, Operator, and Approved. Zero accounts are omitted, so a
// transfer without "from" is a mint and one without "to" is a burn.
type Event struct {
	Seq  uint64 `json:"seq"`
	Type string `json:"type"`
	At   int64  `json:"at"` // Unix milliseconds

	From    string  `json:"from,omitempty"`
	To      string  `json:"to,omitempty"`
	TokenID *uint32 `json:"token_id,omitempty"`

	Owner    string `json:"owner,omitempty"`
	Operator string `json:"operator,omitempty"`
	Approved *bool  `json:"approved,omitempty"`
}

// Event type names.
const (
	TypeTransfer       = "transfer"
	TypeApproval       = "approval"
	TypeApprovalForAll = "approval_for_all"
)

// ============================================================================
// Slog sink
// ============================================================================

// SlogSink logs every event through a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink that logs events at info level.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Transfer implements domain.Sink.
func (s *SlogSink) Transfer(e domain.TransferEvent) {
	s.logger.Info("token transferred",
		"from", e.From.String(),
		"to", e.To.String(),
		"token_id", uint32(e.ID))
}

// Approval implements domain.Sink.
func (s *SlogSink) Approval(e domain.ApprovalEvent) {
	s.logger.Info("token approval granted",
		"owner", e.From.String(),
		"spender", e.To.String(),
		"token_id", uint32(e.ID))
}

// ApprovalForAll implements domain.Sink.
func (s *SlogSink) ApprovalForAll(e domain.ApprovalForAllEvent) {
	s.logger.Info("operator approval set",
		"owner", e.Owner.String(),
		"operator", e.Operator.String(),
		"approved", e.Approved)
}

// ============================================================================
// Ring buffer sink
// ============================================================================

// DefaultRingCapacity bounds the ring buffer when no capacity is given.
const DefaultRingCapacity = 1024

// Ring is a bounded in-memory event buffer. The newest events win: once
// the buffer is full, appending drops the oldest entry. Sequence numbers
// are monotonic across the life of the ring, so a reader can detect
// dropped events by gaps after its last seen sequence.
type Ring struct {
	mu     sync.Mutex
	events []Event
	start  int
	count  int
	seq    uint64
	clock  func() time.Time
}

// NewRing creates a ring buffer holding up to capacity events.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{
		events: make([]Event, capacity),
		clock:  time.Now,
	}
}

// Transfer implements domain.Sink.
func (r *Ring) Transfer(e domain.TransferEvent) {
	id := uint32(e.ID)
	r.append(Event{
		Type:    TypeTransfer,
		From:    accountField(e.From),
		To:      accountField(e.To),
		TokenID: &id,
	})
}

// Approval implements domain.Sink.
func (r *Ring) Approval(e domain.ApprovalEvent) {
	id := uint32(e.ID)
	r.append(Event{
		Type:    TypeApproval,
		From:    accountField(e.From),
		To:      accountField(e.To),
		TokenID: &id,
	})
}

// ApprovalForAll implements domain.Sink.
func (r *Ring) ApprovalForAll(e domain.ApprovalForAllEvent) {
	approved := e.Approved
	r.append(Event{
		Type:     TypeApprovalForAll,
		Owner:    string(e.Owner),
		Operator: string(e.Operator),
		Approved: &approved,
	})
}

func (r *Ring) append(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	e.Seq = r.seq
	e.At = r.clock().UnixMilli()

	if r.count < len(r.events) {
		r.events[(r.start+r.count)%len(r.events)] = e
		r.count++
		return
	}

	// Full: overwrite the oldest slot.
	r.events[r.start] = e
	r.start = (r.start + 1) % len(r.events)
}

// Since returns up to limit events with Seq greater than after, oldest
// first. limit <= 0 means no limit.
func (r *Ring) Since(after uint64, limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Event
	for i := 0; i < r.count; i++ {
		e := r.events[(r.start+i)%len(r.events)]
		if e.Seq <= after {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Recent returns the newest events, oldest first, up to limit.
// limit <= 0 returns everything buffered.
func (r *Ring) Recent(limit int) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.count
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]Event, 0, n)
	for i := r.count - n; i < r.count; i++ {
		out = append(out, r.events[(r.start+i)%len(r.events)])
	}
	return out
}

// LastSeq returns the sequence number of the newest event, 0 if none.
func (r *Ring) LastSeq() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Len returns the number of buffered events.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func accountField(a domain.Account) string {
	if a.IsZero() {
		return ""
	}
	return string(a)
}

// ============================================================================
// Fan-out sink
// ============================================================================

type multiSink []domain.Sink

// Multi fans each event out to every sink in order.
func Multi(sinks ...domain.Sink) domain.Sink {
	return multiSink(sinks)
}

func (m multiSink) Transfer(e domain.TransferEvent) {
	for _, s := range m {
		s.Transfer(e)
	}
}

func (m multiSink) Approval(e domain.ApprovalEvent) {
	for _, s := range m {
		s.Approval(e)
	}
}

func (m multiSink) ApprovalForAll(e domain.ApprovalForAllEvent) {
	for _, s := range m {
		s.ApprovalForAll(e)
	}
}

// ============================================================================
// Capture sink (tests)
// ============================================================================

// Capture records every event it receives. Intended for tests.
type Capture struct {
	mu              sync.Mutex
	transfers       []domain.TransferEvent
	approvals       []domain.ApprovalEvent
	approvalForAlls []domain.ApprovalForAllEvent
}

// NewCapture creates an empty capture sink.
func NewCapture() *Capture {
	return &Capture{}
}

// Transfer implements domain.Sink.
func (c *Capture) Transfer(e domain.TransferEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transfers = append(c.transfers, e)
}

// Approval implements domain.Sink.
func (c *Capture) Approval(e domain.ApprovalEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approvals = append(c.approvals, e)
}

// ApprovalForAll implements domain.Sink.
func (c *Capture) ApprovalForAll(e domain.ApprovalForAllEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.approvalForAlls = append(c.approvalForAlls, e)
}

// Transfers returns a copy of the captured transfer events.
func (c *Capture) Transfers() []domain.TransferEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.TransferEvent, len(c.transfers))
	copy(out, c.transfers)
	return out
}

// Approvals returns a copy of the captured approval events.
func (c *Capture) Approvals() []domain.ApprovalEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ApprovalEvent, len(c.approvals))
	copy(out, c.approvals)
	return out
}

// ApprovalForAlls returns a copy of the captured operator-toggle events.
func (c *Capture) ApprovalForAlls() []domain.ApprovalForAllEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ApprovalForAllEvent, len(c.approvalForAlls))
	copy(out, c.approvalForAlls)
	return out
}

// Total returns the total number of captured events.
func (c *Capture) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.transfers) + len(c.approvals) + len(c.approvalForAlls)
}
