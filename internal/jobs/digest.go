package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"qabot/internal/models"
)

// Sender delivers an email.
type Sender interface {
	Send(to []string, subject, htmlBody, textBody string) error
}

// DigestRenderer renders the digest email.
type DigestRenderer interface {
	UnansweredDigest(subjectPrefix string, questions []models.UnansweredQuestion, dropped int) (subject, htmlBody, textBody string)
}

// DigestOptions configures a Digest.
type DigestOptions struct {
	Recipients []string
	Subject    string
	Interval   time.Duration
	MaxItems   int // Questions kept per batch; the rest are only counted
}

// Digest buffers unanswered questions in memory and emails them in batches.
// It is fed by fallback listeners and never reads the fallback log back.
type Digest struct {
	sender  Sender
	render  DigestRenderer
	opts    DigestOptions
	mu      sync.Mutex
	pending []models.UnansweredQuestion
	dropped int
}

// NewDigest creates a new digest job.
func NewDigest(sender Sender, render DigestRenderer, opts DigestOptions) *Digest {
	if opts.Interval <= 0 {
		opts.Interval = 24 * time.Hour
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 200
	}
	return &Digest{sender: sender, render: render, opts: opts}
}

// Add queues a question for the next digest. It matches fallback.Listener.
func (d *Digest) Add(question string, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) >= d.opts.MaxItems {
		d.dropped++
		return
	}
	d.pending = append(d.pending, models.UnansweredQuestion{
		ID:        uuid.New(),
		Question:  question,
		CreatedAt: at,
	})
}

// Pending returns how many questions are waiting, including dropped ones.
func (d *Digest) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending) + d.dropped
}

// Start begins the background digest loop. A final digest is sent when ctx
// is cancelled so buffered questions are not lost on shutdown.
func (d *Digest) Start(ctx context.Context) {
	log.Printf("Unanswered digest started (interval: %v, recipients: %d)", d.opts.Interval, len(d.opts.Recipients))

	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.Flush()
			log.Println("Unanswered digest stopped")
			return
		case <-ticker.C:
			d.Flush()
		}
	}
}

// Flush sends everything buffered so far. Nothing is sent for an empty batch.
// On failure the batch is put back in front of newer questions.
func (d *Digest) Flush() {
	d.mu.Lock()
	batch, dropped := d.pending, d.dropped
	d.pending, d.dropped = nil, 0
	d.mu.Unlock()

	if len(batch) == 0 && dropped == 0 {
		return
	}

	subject, htmlBody, textBody := d.render.UnansweredDigest(d.opts.Subject, batch, dropped)
	if err := d.sender.Send(d.opts.Recipients, subject, htmlBody, textBody); err != nil {
		log.Printf("Unanswered digest: failed to send %d question(s): %v", len(batch)+dropped, err)
		d.requeue(batch, dropped)
		return
	}

	log.Printf("Unanswered digest: sent %d question(s)", len(batch)+dropped)
}

func (d *Digest) requeue(batch []models.UnansweredQuestion, dropped int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	merged := append(batch, d.pending...)
	dropped += d.dropped
	if over := len(merged) - d.opts.MaxItems; over > 0 {
		merged = merged[:d.opts.MaxItems]
		dropped += over
	}
	d.pending, d.dropped = merged, dropped
}
