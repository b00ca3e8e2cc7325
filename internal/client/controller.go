package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"researchagent/internal/models"
)

var (
	// ErrJobActive is returned when Run is called while a job is in flight.
	ErrJobActive = errors.New("a research job is already active")
	// ErrTimeout is returned when a job does not reach a terminal status
	// within MaxWait.
	ErrTimeout = errors.New("research timed out")
)

// Controller drives one research job from submission to a terminal state and
// keeps the view in sync with the job status.
//
// Poll ticks are serialized: the status fetch runs inline in the polling
// goroutine, and the ticker drops ticks that elapse while a fetch is slow, so
// two fetches are never in flight at once.
type Controller struct {
	api  *Client
	view View
	log  *logrus.Logger

	// Interval is the poll cadence. Defaults to 2s.
	Interval time.Duration
	// MaxWait bounds the total time spent polling one job. Defaults to 15m.
	MaxWait time.Duration
	// AlertTTL is how long a transient alert stays visible. Defaults to 5s.
	AlertTTL time.Duration

	mu         sync.Mutex
	running    bool
	state      UIState
	alertTimer *time.Timer
}

func NewController(api *Client, view View, log *logrus.Logger) *Controller {
	return &Controller{
		api:      api,
		view:     view,
		log:      log,
		Interval: 2 * time.Second,
		MaxWait:  15 * time.Minute,
		AlertTTL: 5 * time.Second,
	}
}

// Run submits the topic and polls until the job completes, fails, is
// cancelled, or exceeds MaxWait. It is synchronous; a second Run while one is
// active returns ErrJobActive.
func (c *Controller) Run(ctx context.Context, topic string) (*Result, error) {
	trimmed, err := ValidateTopic(topic)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.showAlert(verr.UserMessage(), AlertError)
		}
		return nil, err
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil, ErrJobActive
	}
	c.running = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	c.render(func(s *UIState) {
		s.Busy = true
		s.Percent = 5
		s.Message = "Submitting research request..."
		s.Failed = false
		s.Result = nil
	})

	id, err := c.api.StartResearch(ctx, trimmed)
	if err != nil {
		c.failure(err.Error())
		return nil, err
	}
	c.log.WithField("job_id", id).Debug("research submitted")

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()
	deadline := time.NewTimer(c.MaxWait)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			c.failure("Research cancelled")
			return nil, ctx.Err()

		case <-deadline.C:
			c.failure("Research timed out. Please try again.")
			return nil, ErrTimeout

		case <-ticker.C:
			st, err := c.api.Status(ctx, id)
			if err != nil {
				// Transient poll failures are tolerated; the next tick retries.
				c.log.WithError(err).WithField("job_id", id).Warn("status poll failed")
				continue
			}
			c.apply(st)

			switch st.Status {
			case models.StatusCompleted:
				res := &Result{
					ID:          id,
					Topic:       st.Topic,
					HTMLContent: st.HTMLContent,
					DownloadURL: c.api.DownloadURL(id),
				}
				if res.Topic == "" {
					res.Topic = trimmed
				}
				c.success(res)
				return res, nil

			case models.StatusError:
				msg := st.Error
				if msg == "" {
					msg = "Research failed. Please try again."
				}
				c.failure(msg)
				return nil, fmt.Errorf("research failed: %s", msg)
			}
		}
	}
}

// apply updates the progress display from one poll response.
func (c *Controller) apply(st *StatusResponse) {
	c.render(func(s *UIState) {
		if pct, ok := ProgressPercent(st.Status); ok {
			s.Percent = pct
		}
		if st.Message != "" {
			s.Message = st.Message
		}
	})
}

func (c *Controller) success(res *Result) {
	c.render(func(s *UIState) {
		s.Busy = false
		s.Percent = 100
		s.Message = "Research completed!"
		s.Result = res
	})
}

// failure flips the error visual. The fill percentage keeps its last value.
func (c *Controller) failure(message string) {
	c.render(func(s *UIState) {
		s.Busy = false
		s.Failed = true
	})
	c.showAlert(message, AlertError)
}

// showAlert replaces any visible alert and schedules its dismissal.
func (c *Controller) showAlert(message string, kind AlertKind) {
	c.mu.Lock()
	if c.alertTimer != nil {
		c.alertTimer.Stop()
	}
	alert := &Alert{Message: message, Kind: kind}
	c.state.Alert = alert
	c.alertTimer = time.AfterFunc(c.AlertTTL, func() {
		c.mu.Lock()
		if c.state.Alert != alert {
			c.mu.Unlock()
			return
		}
		c.state.Alert = nil
		snap := c.state
		c.mu.Unlock()
		c.view.Render(snap)
	})
	snap := c.state
	c.mu.Unlock()
	c.view.Render(snap)
}

// render applies a state mutation and pushes a snapshot to the view. The view
// is called outside the lock.
func (c *Controller) render(mutate func(*UIState)) {
	c.mu.Lock()
	mutate(&c.state)
	snap := c.state
	c.mu.Unlock()
	c.view.Render(snap)
}
