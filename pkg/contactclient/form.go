package contactclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"contact-service/pkg/submission"
)

var (
	ErrInvalid  = errors.New("submission has invalid fields")
	ErrInFlight = errors.New("a submission is already in flight")
)

const (
	SuccessText = "Message sent successfully. Thanks for reaching out!"
	FailureText = "Something went wrong. Please try again."
)

type NotificationKind int

const (
	Success NotificationKind = iota
	Failure
)

type Notification struct {
	Kind NotificationKind
	Text string
}

// Sender is satisfied by *Client.
type Sender interface {
	Submit(ctx context.Context, sub submission.Submission) error
}

// Form keeps field values and per-field errors between submits. Only one
// submit may be outstanding at a time.
type Form struct {
	sender Sender
	notify func(Notification)

	inFlight atomic.Bool

	mu     sync.Mutex
	values submission.Submission
	errors submission.FieldErrors
}

// NewForm creates an empty form. notify may be nil.
func NewForm(sender Sender, notify func(Notification)) *Form {
	if notify == nil {
		notify = func(Notification) {}
	}
	return &Form{sender: sender, notify: notify}
}

func (f *Form) Set(values submission.Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = values
}

func (f *Form) Values() submission.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

// Errors returns the field errors of the last submit, keyed by JSON field name.
func (f *Form) Errors() submission.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors
}

func (f *Form) Submitting() bool {
	return f.inFlight.Load()
}

// Submit validates the fields and sends them. Invalid fields block the send
// and return ErrInvalid. On success the fields are cleared; on failure they
// are kept so the user can retry.
func (f *Form) Submit(ctx context.Context) error {
	if !f.inFlight.CompareAndSwap(false, true) {
		return ErrInFlight
	}
	defer f.inFlight.Store(false)

	f.mu.Lock()
	sub := f.values.Normalize()
	fe := submission.Validate(sub)
	f.errors = fe
	f.mu.Unlock()

	if fe != nil {
		return errors.Join(ErrInvalid, fe)
	}

	if err := f.sender.Submit(ctx, sub); err != nil {
		f.notify(Notification{Kind: Failure, Text: FailureText})
		return err
	}

	f.mu.Lock()
	f.values = submission.Submission{}
	f.mu.Unlock()

	f.notify(Notification{Kind: Success, Text: SuccessText})
	return nil
}
